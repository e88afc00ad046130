package auth

import "testing"

func newTestTable() *Table {
	return NewTable([]User{
		{Name: "user", Password: "123456", Permission: ReadWrite},
		{Name: "guest", Password: "guest", Permission: ReadOnly},
	})
}

func TestAuthenticatePlainComparison(t *testing.T) {
	tbl := newTestTable()

	if _, ok := tbl.Authenticate("user", "wrong"); ok {
		t.Fatal("wrong password should not authenticate")
	}
	u, ok := tbl.Authenticate("user", "123456")
	if !ok {
		t.Fatal("correct password should authenticate")
	}
	if u.Permission != ReadWrite {
		t.Fatalf("permission = %v, want ReadWrite", u.Permission)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	tbl := newTestTable()
	if _, ok := tbl.Authenticate("nobody", "x"); ok {
		t.Fatal("unknown user should not authenticate")
	}
}

func TestLookupDoesNotCheckPassword(t *testing.T) {
	tbl := newTestTable()
	if _, ok := tbl.Lookup("guest"); !ok {
		t.Fatal("expected guest to be found")
	}
	if _, ok := tbl.Lookup("nobody"); ok {
		t.Fatal("expected nobody to be absent")
	}
}

func TestAddRemove(t *testing.T) {
	tbl := newTestTable()
	if err := tbl.Add(User{Name: "admin", Password: "topsecret1", Permission: ReadWrite}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tbl.Add(User{Name: "admin", Password: "x", Permission: ReadOnly}); err == nil {
		t.Fatal("expected error adding duplicate user")
	}
	if err := tbl.Remove("admin"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := tbl.Remove("admin"); err == nil {
		t.Fatal("expected error removing missing user")
	}
}

func TestPermissionCanWrite(t *testing.T) {
	if ReadOnly.CanWrite() {
		t.Fatal("read-only must not CanWrite")
	}
	if !ReadWrite.CanWrite() {
		t.Fatal("read-write must CanWrite")
	}
}
