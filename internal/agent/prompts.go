package agent

// Built-in prompt templates. Any of them can be replaced by a file of the
// same name in the prompt directory.

const (
	PromptReAct     = "react.md"
	PromptSolver    = "solver.md"
	PromptPlanner   = "planner.md"
	PromptSynthesis = "synthesis.md"
	PromptCritique  = "critique.md"
)

// System instructions sent with each kind of completion call.
const (
	systemReAct     = "You are a helpful assistant that follows the ReAct pattern."
	systemSolver    = "You are a capable solver."
	systemPlanner   = "You are a strategic planner."
	systemSynthesis = "You are a helpful assistant."
	systemCritique  = "You are a helpful critic."
)

// DegradedText stands in for model output when a completion call fails.
const DegradedText = "Error: the model call failed."

const (
	malformedObservation = "Observation: Invalid format. Please provide 'Thought:', 'Action:' and 'Action Input:', or 'Final Answer:'."
	wrapUpObservation    = "Observation: You have reached the maximum number of turns. Please provide the Final Answer now based on what you have found so far."
)

var builtinPrompts = map[string]string{
	PromptReAct: `
Answer the following questions as best you can. You have access to the following tools:

{{.ToolDescriptions}}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.ToolNames}}]
Action Input: the input to the action (plain text, or a JSON object when the tool takes several parameters)
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

IMPORTANT:
1. Always start your response with "Thought:".
2. Do not hallucinate the "Observation:" field. The observation will be provided to you.
3. Only produce one Action at a time.

Begin!

Question: {{.Question}}
`,

	PromptSolver: `
You are a solver for a helpful assistant.
You have access to the following tools:
{{.ToolDescriptions}}

Your task is to execute the current step of the plan, given the context from previous steps.
Current Step: {{.Step}}
Previous Steps and Results:
{{.Context}}

Use the following format:
Thought: think about what to do for the current step
Action: the action to take, should be one of [{{.ToolNames}}]
Action Input: the input to the action (plain text, or a JSON object when the tool takes several parameters)
Observation: the result of the action
... (Thought/Action/Action Input/Observation can repeat if needed)
Final Answer: the result for this specific step (not necessarily the final answer to the user's original question, just for this step)
`,

	PromptPlanner: `
You are a planner for a helpful assistant.
Your job is to break down a complex user question into a step-by-step plan.
Each step should be a clear, executable instruction.
Do not execute the steps, just list them.

User Question: {{.Question}}

Output format:
1. [Step 1]
2. [Step 2]
...
`,

	PromptSynthesis: `
You are a helpful assistant.
Based on the user's original question and the results of executing the plan, provide the final answer.

User Question: {{.Question}}

Plan Execution Results:
{{.Results}}

Final Answer:
`,

	PromptCritique: `
You are a strict critic.
Review the following User Question and the Agent's Answer.
Check for correctness, completeness, and clarity.
If the answer is incorrect or incomplete, provide specific feedback and suggestions for improvement.
If the answer is satisfactory, simply output "SATISFACTORY".

User Question: {{.Question}}
Agent Answer: {{.Answer}}

Critique:
`,
}

type reactPromptData struct {
	ToolDescriptions string
	ToolNames        string
	Question         string
}

type solverPromptData struct {
	ToolDescriptions string
	ToolNames        string
	Step             string
	Context          string
}

type planPromptData struct {
	Question string
}

type synthesisPromptData struct {
	Question string
	Results  string
}

type critiquePromptData struct {
	Question string
	Answer   string
}
