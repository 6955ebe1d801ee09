// Package virtual is an in-process device that implements every platform
// collaborator from a YAML screen definition. It backs `serve` on hosts
// without a real device and drives end-to-end tests.
package virtual
