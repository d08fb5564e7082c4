// Package prompts centralizes every prompt string the planner sends to an
// LLM provider. Inline prompt literals elsewhere in this codebase are
// forbidden; every prompt used by internal/gateway is a named constant here,
// ported from original_source/crates/g3-planner/src/prompts.rs.
package prompts

// DiscoverySystemPrompt instructs the planning model to analyze a codebase
// and propose exploration commands, without implementing anything, during
// the Fresh-state-only Discovery enrichment.
const DiscoverySystemPrompt = `You are an expert code analyst. Your task is to analyze a codebase structure and generate shell commands to explore it further.

You will receive:
1. User requirements describing what needs to be implemented
2. A codebase report showing the structure and key elements of the codebase

Your job is to:
1. Understand the requirements and identify what parts of the codebase are relevant
2. Generate shell commands to explore those parts in more detail

IMPORTANT: Do NOT attempt to implement anything. Only generate exploration commands.`

// DiscoveryRequirementsPrompt is appended with the user's one-line
// description to turn it into a first requirements draft.
const DiscoveryRequirementsPrompt = `**CRITICAL**: DO ABSOLUTELY NOT ATTEMPT TO IMPLEMENT THESE REQUIREMENTS AT THIS POINT. ONLY USE THEM TO
UNDERSTAND WHICH PARTS OF THE CODE YOU MIGHT BE INTERESTED IN, AND WHAT SEARCH/GREP EXPRESSIONS YOU MIGHT WANT TO USE
TO GET A BETTER UNDERSTANDING OF THE CODEBASE.

Your task is to analyze the codebase overview provided below and generate shell commands to explore it further - in particular, those
you deem most relevant to the requirements given below.

Your output MUST include:
1. A summary report.  Use the heading {{SUMMARY BASED ON INITIAL INFO}}.
   - retain as much information of that as you consider relevant to the requirements, and for making an implementation plan.
   - Ideally that should not be more than 10000 tokens.
2. A list of shell commands to explore the code. Use the heading {{CODE EXPLORATION COMMANDS}}.
   - Try plan ahead for what you need for a deep dive into the code. Make sure the information is sparing.
   - Carefully consider which commands give you the most relevant information, pick the top 25 commands.
   - Use tools like ls, rg (ripgrep), grep, sed, cat, head, tail etc.
   - Focus on commands that will help understand the code STRUCTURE without dumping large sections of file.

DO NOT ADD ANY COMMENTS OR OTHER EXPLANATION IN THE COMMANDS SECTION, JUST INCLUDE THE SHELL COMMANDS.`

// RefineRequirementsSystemPrompt drives the Refine phase's gateway call: it
// reads the existing codebase and plan history, then edits
// new_requirements.md under the {{CURRENT REQUIREMENTS}} heading without
// implementing anything.
const RefineRequirementsSystemPrompt = `You're an experienced software engineering architect. Please help me to ideate and refine
REQUIREMENTS for an implementation (or changes to the existing implementation), at the specified codepath.
The requirements will later be used by an LLM.

IMPORTANT: Before suggesting changes, you MUST:
1. Read and understand the existing codebase at the specified codepath using read_file, shell commands, and code_search
2. Read the <codepath>/g3-plan/ directory to understand past requirements and implementation history
   - Pay particular attention to planner_history.txt which contains a chronological record of all planning activities
   - Review any completed_requirements_*.md files to understand what has been implemented before
3. Use this context to ensure your suggestions are consistent with the existing codebase architecture

I wish to have a compact specification, and DO NOT ATTEMPT TO IMPLEMENT OR BUILD ANYTHING.
At this point ONLY suggest improvements to the requirements. Do not implement anything.
DO NOT DO A RE-WRITE, UNLESS THE USER EXPLICITLY ASKS FOR THAT.
If you think the requirements are totally incoherent and unusable, write constructive feedback on
why that is, and suggest (very briefly) that you could rewrite it if explicitly asked to do so.
If the requirements are usable, make some edits/changes/additions as you deem necessary, and
PREPEND them under the heading {{CURRENT REQUIREMENTS}} to the <codepath>/g3-plan/new_requirements.md file.

The codepath will be provided in the user message.`

// GenerateRequirementsSummaryPrompt asks for a short multi-line summary of
// the frozen requirements, used verbatim in the START IMPLEMENTING journal
// entry's indented summary block.
const GenerateRequirementsSummaryPrompt = `Generate a short summary of the following requirements.
Take care that the most important elements of the requirements are reflected.
Do not go into deep detail. Make the summary at most 5 lines long.
Each line should be at most 120 characters long.
Output ONLY the summary text, no headers or formatting.

Requirements:
%s`

// GenerateCommitMessagePrompt asks for a summary/description pair in the
// {{COMMIT_SUMMARY}}/{{COMMIT_DESCRIPTION}} format GenerateCommitMessage
// parses.
const GenerateCommitMessagePrompt = `Generate a git commit message for the following implementation.

REQUIREMENTS THAT WERE IMPLEMENTED:
%s

COMPLETED FILES:
- Requirements: %s
- Todo: %s

Generate a commit message with:
1. A summary line (max 72 characters, imperative mood, e.g., "Add planning mode with...")
2. A blank line
3. A description (max 10 lines, each max 72 characters, wrapped properly)

The description should:
- Describe the implementation concisely
- Include only the most important and salient details
- Mention the completed_requirements and completed_todo filenames

Output format:
{{COMMIT_SUMMARY}}
<summary line here>
{{COMMIT_DESCRIPTION}}
<description here>`

// OldConfigFormatError is shown when a loaded config file uses the
// deprecated flat [providers] shape. Kept here, alongside every other
// planner-authored prose constant, rather than inline in internal/config.
const OldConfigFormatError = `Your configuration file uses an old format that is no longer supported.

Please update your configuration to use the new provider format:

[providers]
default_provider = "anthropic.default"  # Format: "<provider_type>.<config_name>"
planner = "anthropic.planner"           # Optional: specific provider for planner
coach = "anthropic.default"             # Optional: specific provider for coach
player = "openai.player"                # Optional: specific provider for player

Each mode (planner, coach, player) can specify a full path like "<provider_type>.<config_name>".
If not specified, they fall back to default_provider.`

// ToolNameFinalOutput is the tool name the feedback extractor and the
// approval-detection logic look for in an agent's tool-call stream.
const ToolNameFinalOutput = "final_output"

// PlannerToolSet is the restricted tool set offered to the planning model
// for refinement, summarisation, and commit-message generation calls. It
// explicitly excludes todo_write: the planner never touches the sub-agent's
// checklist.
var PlannerToolSet = []string{"read_file", "write_file", "shell", "code_search", "str_replace", "final_output"}
