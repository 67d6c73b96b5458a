package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"guest":   RoleGuest,
		"user":    RoleGuest,
		"HOST":    RoleHost,
		" admin ": RoleAdmin,
	}
	for in, want := range cases {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatal("expected unknown role to be rejected")
	}
}

func TestUserPublicDropsHash(t *testing.T) {
	u := &User{ID: "u1", PasswordHash: "secret"}
	pub := u.Public()
	if pub.PasswordHash != "" {
		t.Fatal("public copy must not carry the password hash")
	}
	if u.PasswordHash != "secret" {
		t.Fatal("original user must be left untouched")
	}
}

func TestListingFilterMatches(t *testing.T) {
	loc := "lisb"
	min, max := 50.0, 100.0
	f := ListingFilter{Location: &loc, MinPrice: &min, MaxPrice: &max}

	if !f.Matches(&Listing{Location: "Lisbon, PT", Price: 80}) {
		t.Fatal("expected match")
	}
	if f.Matches(&Listing{Location: "Porto", Price: 80}) {
		t.Fatal("location should not match")
	}
	if f.Matches(&Listing{Location: "Lisbon", Price: 120}) {
		t.Fatal("price above max should not match")
	}
	if f.Matches(&Listing{Location: "Lisbon", Price: 10}) {
		t.Fatal("price below min should not match")
	}
}
