// Package urls holds documentation links shown in command output.
package urls
