package edit

const classifySystemPrompt = `You route follow-up messages about a business validation report.
Decide whether the message is a question about the report (answer it, change nothing) or an edit request (the user wants the report changed).
When unsure, choose "question".
Respond with exactly one JSON object: {"type": "question" | "edit", "rationale": "one short sentence"}`

const answerSystemPrompt = `You answer questions about a business validation report.
Use only the report and the numbered sources provided. Be concise and concrete.
If you relied on sources, end with a line "Sources: [n], [m]" listing their numbers. Otherwise omit that line.`

const planSystemPrompt = `You plan edits to a business validation report.
The report has these sections and fields:
%s
Rules:
- affectedSections lists every section whose content must change.
- If the product name or tagline changes (vision), include "advisors": advisor personas reference the product name.
- Whenever any other section changes, include "verdict": it summarizes the others.
- editInstruction is a precise instruction a writer can apply to each affected section.
- response is a short, friendly confirmation for the user.
Respond with exactly one JSON object:
{"editDescription": "", "editInstruction": "", "affectedSections": ["vision"], "response": ""}`

// clarification is returned when a plan could not be produced.
const clarification = "I couldn't work out exactly what to change. Could you say which part of the report you want edited and how?"
