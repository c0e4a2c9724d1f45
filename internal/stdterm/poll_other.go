//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)
// +build !aix,!darwin,!dragonfly,!freebsd,!linux,!netbsd,!openbsd,!solaris

package stdterm

import "os"

func pollReadable(f *os.File) (bool, error) { return false, errNotTerminal }
