package linux

import (
	securejoin "github.com/cyphar/filepath-securejoin"
)

// SecureJoin resolves unsafePath against root, following any symlinks found
// along the way as if root were the process's filesystem root. This keeps a
// malicious or buggy spec path (e.g. one traversing "../../etc/passwd" via a
// symlink planted in the rootfs) from escaping root.
func SecureJoin(root, unsafePath string) (string, error) {
	return securejoin.SecureJoin(root, unsafePath)
}
