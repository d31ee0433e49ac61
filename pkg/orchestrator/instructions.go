package orchestrator

import "strings"

// Fixed task texts per role. The role's configured system prompt, when
// present, is prepended so projects can steer tone and conventions without
// losing the schema constraint.

const testerTask = "Task: Add exactly one failing unit test (red) for the next small behavior in the kata. " +
	"Do not modify implementation code. Output ONLY a JSON patch object."

const implementorTask = "Task: Make the test suite pass with the simplest change. Keep edits minimal and focused. " +
	"Use baby steps. Output ONLY a JSON patch object.\n\nTest failures to fix:\n"

const refactorerTask = "Task: Refactor to improve clarity, remove duplication, and prepare for change. " +
	"Don't change behavior. After edits, all tests must still pass. Keep steps small. Output ONLY a JSON patch object."

func (o *Orchestrator) buildTesterInstructions() string {
	return joinInstructions(o.cfg.Tester.SystemPrompt, testerTask)
}

func (o *Orchestrator) buildImplementorInstructions(failingOutput string) string {
	return joinInstructions(o.cfg.Implementor.SystemPrompt, implementorTask+failingOutput)
}

func (o *Orchestrator) buildRefactorerInstructions() string {
	return joinInstructions(o.cfg.Refactorer.SystemPrompt, refactorerTask)
}

func joinInstructions(systemPrompt, task string) string {
	var b strings.Builder
	if systemPrompt != "" {
		b.WriteString(systemPrompt)
		b.WriteString("\n\n")
	}
	b.WriteString(task)
	return b.String()
}
