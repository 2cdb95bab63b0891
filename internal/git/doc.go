// Package git commits the regenerated site and pushes it to the publish
// branch.
//
// Two publishers are provided:
//   - GoGitPublisher stages, commits and pushes in-process with go-git and
//     supports ssh, token and basic push credentials.
//   - CLIPublisher runs the git binary, reusing the host's credential
//     helpers and ssh agent.
//
// Both report the outcome as a PublishResult. Pushed is true only when
// staging, committing and pushing all succeeded.
package git
