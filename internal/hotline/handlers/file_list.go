package handlers

import "github.com/rhxd/rhxd/internal/hotline/field"

// GetFileNameList handles transaction 200. File transfer is out of scope;
// every request succeeds with an empty listing rather than erroring, so
// clients that probe the root directory on login see an empty but valid
// file list instead of a failed transaction.
func GetFileNameList(_ *Context, _ []field.Field) (*Reply, error) {
	return reply(), nil
}
