// Package publish runs the export pipeline end to end: fetch the articles
// marked for publishing, regenerate the site artifacts, commit and push the
// site repository and finally mark the pushed articles as published.
//
// Status updates are gated on the push. When the push fails no article is
// marked, so the next run picks the same articles up again.
package publish
