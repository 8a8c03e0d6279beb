// Package testsupport provides fixtures shared by package tests: temp-dir
// backed configs, synthetic images, and afero file helpers.
package testsupport
