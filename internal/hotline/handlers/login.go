package handlers

import (
	"github.com/rhxd/rhxd/internal/hotline/field"
	"github.com/rhxd/rhxd/internal/hotline/herr"
	"github.com/rhxd/rhxd/internal/hotline/session"
	"github.com/rhxd/rhxd/internal/hotline/wire"
)

// Login handles transaction 107. Inputs: field 105 UserLogin, field 106
// UserPassword (both scrambled), field 160 Version. An empty login
// authenticates as guest when AllowGuest is set; otherwise an unscrambled
// login is looked up against the account store. Fields 160/161/162 are
// always present on success, unconditionally of client version. On
// success the session moves to StateAgreeing, awaiting Agreed (121).
func Login(hctx *Context, fields []field.Field) (*Reply, error) {
	login := scrambledString(fields, field.UserLogin)
	password := scrambledString(fields, field.UserPassword)

	if versionField, ok := field.Find(fields, field.Version); ok {
		hctx.Session.SetClientVersion(versionField.Uint16())
	}

	access, err := authenticate(hctx, login, password)
	if err != nil {
		return nil, err
	}

	hctx.Session.SetAccount(nil, access)
	hctx.Session.Advance(session.StateAgreeing)

	return reply(
		field.New(field.Version, uint16Bytes(hctx.Config.ServerVersion)),
		field.New(field.BannerId, uint32Bytes(0)),
		field.New(field.ServerName, []byte(hctx.Config.ServerName)),
	), nil
}

func authenticate(hctx *Context, login, password string) (wire.AccessPrivileges, error) {
	if login == "" {
		if !hctx.Config.AllowGuest {
			return 0, herr.New(herr.LoginFailed, "guest login disabled")
		}
		return hctx.Config.DefaultGuestAccess, nil
	}

	if hctx.Accounts == nil {
		return 0, herr.New(herr.LoginFailed, "no account store configured")
	}

	acct, err := hctx.Accounts.Lookup(hctx.Ctx, login, password)
	if err != nil {
		return 0, herr.New(herr.LoginFailed, "invalid login or password")
	}

	access := acct.Access
	if access == 0 {
		access = hctx.Config.DefaultUserAccess
	}
	return access, nil
}

// scrambledString extracts field id from fields and unscrambles it. An
// absent field yields the empty string, matching a guest login's missing
// UserLogin/UserPassword.
func scrambledString(fields []field.Field, id uint16) string {
	f, ok := field.Find(fields, id)
	if !ok {
		return ""
	}
	return string(field.Scramble(f.Bytes))
}

func uint16Bytes(v uint16) []byte {
	b := make([]byte, 2)
	wire.PutUint16(b, v)
	return b
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	wire.PutUint32(b, v)
	return b
}
