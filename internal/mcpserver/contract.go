package mcpserver

import (
	"strings"

	"github.com/starford/quickseq/internal/deeplink"
)

const linkFormsTemplate = `# quickseq Link Forms

## Deep links

Open a page or a block in the note application.

| Target | URL |
|---|---|
| Page  | ` + "`" + `{scheme}://graph/<graph>?page=<title>` + "`" + ` |
| Block | ` + "`" + `{scheme}://graph/<graph>?block-id=<uuid>` + "`" + ` |

- ` + "`" + `<graph>` + "`" + ` is the name of the open graph, path-escaped.
- ` + "`" + `<title>` + "`" + ` is percent-encoded; spaces become ` + "`" + `%20` + "`" + `.
- A page link needs a title and a block link needs a uuid. Without them no link exists.

## Journal entries

Everything quickseq captures is appended as one block to today's journal
page. The page name is today's date in the graph's preferred date format
(default ` + "`" + `MMM do, yyyy` + "`" + `, e.g. ` + "`" + `Jan 5th, 2024` + "`" + `).

| Captured | Stored at | Block text |
|---|---|---|
| Text | n/a | the text itself |
| Image, video, audio, PDF | ` + "`" + `assets/<unix-ms>_<n>.<ext>` + "`" + ` | ` + "`" + `![name](../assets/<file>)` + "`" + ` |
| Markdown file | ` + "`" + `pages/<name>.md` + "`" + ` | ` + "`" + `[[<title>]]` + "`" + ` |
| Any other file | ` + "`" + `assets/<unix-ms>_<n>.<ext>` + "`" + ` | ` + "`" + `[name](../assets/<file>)` + "`" + ` |

` + "`" + `<n>` + "`" + ` is the file's position in the batch. A Markdown page's title comes
from its frontmatter ` + "`" + `title` + "`" + ` or its ` + "`" + `title::` + "`" + ` property, else the file name.
Existing files are never replaced. A taken page name becomes
` + "`" + `<name>_<unix-ms>_<n>` + "`" + ` and a taken asset name gets a ` + "`" + `_<k>` + "`" + ` suffix.
`

// LinkFormsContract renders the link-forms document for scheme.
func LinkFormsContract(scheme string) string {
	if scheme == "" {
		scheme = deeplink.DefaultScheme
	}
	return strings.ReplaceAll(linkFormsTemplate, "{scheme}", scheme)
}
