package mcpserver

// OrgFormatContract describes the canonical org document format that
// LLM consumers should follow when creating or updating documents.
const OrgFormatContract = `# Raido Org Format Contract

Every org document stored in Raido MUST follow this structure.

## Structure

` + "```" + `org
#+TITLE: Human-readable title          # REQUIRED - used in search, lists, graph
#+FILETAGS: :project:area:             # OPTIONAL - tags inherited by every headline
#+TODO: TODO NEXT | DONE               # OPTIONAL - overrides the default keyword set

* TODO [#A] First task :urgent:
SCHEDULED: <2026-02-01 Sun>
:PROPERTIES:
:ID: 4f6b5a2c-...                      # stable identity for id: links
:END:
Body text under the headline.

** Subtask
Use [[id:4f6b5a2c-...][links by ID]] or [[file:other.org::*Heading][file links]].
` + "```" + `

## Rules

1. **File keywords come first.** ` + "`" + `#+TITLE:` + "`" + ` and friends appear before the
   first headline; nothing above them but comments.
2. **Headlines** start with one or more ` + "`" + `*` + "`" + ` followed by a space. The optional
   parts in order: TODO keyword, ` + "`" + `[#A]` + "`" + ` priority cookie, title, trailing ` + "`" + `:tags:` + "`" + `.
3. **TODO keywords** must come from the document's effective keyword set
   (default ` + "`" + `TODO | DONE` + "`" + `, overridable per file with ` + "`" + `#+TODO:` + "`" + `).
4. **Planning lines** (` + "`" + `SCHEDULED:` + "`" + `, ` + "`" + `DEADLINE:` + "`" + `, ` + "`" + `CLOSED:` + "`" + `) sit on the line
   immediately after the headline, before any drawer.
5. **Property drawers** open with ` + "`" + `:PROPERTIES:` + "`" + ` and close with ` + "`" + `:END:` + "`" + `;
   one ` + "`" + `:KEY: value` + "`" + ` per line. Give headlines an ` + "`" + `:ID:` + "`" + ` when they need to
   be linked or tracked.
6. **Timestamps** use ` + "`" + `<2026-02-01 Sun>` + "`" + ` (active) or ` + "`" + `[2026-02-01 Sun]` + "`" + `
   (inactive), optionally with time ` + "`" + `<2026-02-01 Sun 14:30>` + "`" + ` and a repeater
   like ` + "`" + `+1w` + "`" + `, ` + "`" + `++1w` + "`" + `, or ` + "`" + `.+1w` + "`" + `.
7. **Links** use double brackets: ` + "`" + `[[id:UUID][description]]` + "`" + ` for stable node
   links, ` + "`" + `[[file:path.org::*Heading]]` + "`" + ` for file links, ` + "`" + `[[Heading]]` + "`" + ` for
   same-file fuzzy links.
8. **File paths** end with ` + "`" + `.org` + "`" + ` and use forward slashes.
9. **Encoding** is UTF-8 with a trailing newline.
10. **Prefer structural edit tools** (edit_headline) over rewriting whole
    documents: they preserve untouched bytes exactly.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns an ` + "`" + `orgLink` + "`" + ` field ready to paste into the document body.
- Assets are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference them with a file link: ` + "`" + `[[file:attachments/diagram.png]]` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.

## Example

` + "```" + `org
#+TITLE: Weekly review 2026-02-01
#+FILETAGS: :review:

* TODO [#B] Plan next sprint :project_x:
DEADLINE: <2026-02-05 Thu>
:PROPERTIES:
:ID: 8c1d2e3f-aaaa-bbbb-cccc-000000000001
:END:
See [[file:projects/roadmap.org::*Q1][the Q1 roadmap]].

* DONE Send status update
CLOSED: [2026-01-31 Sat 17:02]
[[file:attachments/status-chart.png]]
` + "```" + `
`
