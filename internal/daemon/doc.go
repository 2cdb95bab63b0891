// Package daemon drives repeated pipeline runs for `ncms schedule`.
package daemon
