package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// accessNames maps the flag names rhxdctl accepts on --access/grant/revoke
// to their AccessPrivileges bit, in the order the core protocol declares
// them.
var accessNames = map[string]wire.AccessPrivileges{
	"delete-file":            wire.AccessDeleteFile,
	"upload-file":            wire.AccessUploadFile,
	"download-file":          wire.AccessDownloadFile,
	"upload-anywhere":        wire.AccessUploadAnywhere,
	"create-folder":          wire.AccessCreateFolder,
	"delete-folder":          wire.AccessDeleteFolder,
	"rename-folder":          wire.AccessRenameFolder,
	"move-folder":            wire.AccessMoveFolder,
	"read-chat":              wire.AccessReadChat,
	"send-chat":              wire.AccessSendChat,
	"open-chat":              wire.AccessOpenChat,
	"create-user":            wire.AccessCreateUser,
	"delete-user":            wire.AccessDeleteUser,
	"modify-user":            wire.AccessModifyUser,
	"news-read-article":      wire.AccessNewsReadArticle,
	"news-post-article":      wire.AccessNewsPostArticle,
	"news-delete-article":    wire.AccessNewsDeleteArticle,
	"news-create-category":   wire.AccessNewsCreateCategory,
	"news-delete-category":   wire.AccessNewsDeleteCategory,
	"disconnect-user":        wire.AccessDisconnectUser,
	"cannot-be-disconnected": wire.AccessCannotBeDiscon,
	"comment":                wire.AccessComment,
	"get-client-info":        wire.AccessGetClientInfo,
}

// parseAccessList parses a comma-separated list of access flag names into
// their combined AccessPrivileges bitfield.
func parseAccessList(csv string) (wire.AccessPrivileges, error) {
	var access wire.AccessPrivileges

	csv = strings.TrimSpace(csv)
	if csv == "" {
		return 0, nil
	}

	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		bit, ok := accessNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown access flag %q (see 'rhxdctl account grant --help' for the list)", name)
		}
		access |= bit
	}

	return access, nil
}

// allAccessNamesCSV returns every recognized access flag name, sorted and
// comma-joined, for the "admin" preset offered during interactive account
// creation.
func allAccessNamesCSV() string {
	names := make([]string, 0, len(accessNames))
	for name := range accessNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// formatAccessList renders access as its set flag names, sorted.
func formatAccessList(access wire.AccessPrivileges) string {
	var names []string
	for name, bit := range accessNames {
		if access.Has(bit) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ",")
}
