// Package testutil provides shared test utilities for stato.
//
// # Fixtures
//
// The fixtures.go file provides module sources for testing:
//
//   - ValidQCSkill, ValidNormalizeSkill, ValidClusterSkill - complete skills
//   - ValidPlan, ValidMemory, ValidContext, ValidProtocol - one per kind
//   - CorruptedSkillMissingFields, CorruptedSkillBadTypes - rejected skills
//   - FixableSkill - a skill that validates after auto-correction
//   - SampleBundle - a bundle document holding skills, plan, memory and context
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupProject(t) - creates a temp directory with the .stato structure
//   - WriteTestFile(t, base, path, content) - writes a file in test dir
//   - ReadTestFile(t, base, path) - reads a file in test dir
//   - MustMarshalJSON(t, v) - marshals to JSON or fails test
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - AssertValid(t, res), AssertInvalid(t, res) - overall outcome
//   - AssertHasCode(t, res, code), AssertNoCode(t, res, code) - diagnostic presence
//   - AssertCodes(t, res, codes...) - the exact set of diagnostic codes
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    res := compiler.Validate(testutil.FixableSkill, "")
//	    testutil.AssertValid(t, res)
//	    testutil.AssertHasCode(t, res, module.CodeVersionPatchAppended)
//	}
package testutil
