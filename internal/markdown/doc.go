// Package markdown holds the file-level building blocks of the publishing
// workflow: the frontmatter codec, markdown discovery, title and summary
// derivation, and the goldmark based HTML renderer used by the server.
package markdown
