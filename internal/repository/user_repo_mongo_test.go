package repository

import (
	"testing"
	"time"

	"acm-portal/internal/domain"
)

func TestMongoDocumentMapping_RoundTripsCredentialFields(t *testing.T) {
	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
	u := domain.User{
		ID:                   "u1",
		Email:                "a@b.com",
		PasswordHash:         "hash",
		FirstName:            "Ada",
		ConfirmEmailToken:    "c",
		ResetPasswordToken:   "r",
		ResetPasswordExpires: &expires,
		Verified:             true,
		Resume:               "resumes/u1/cv.pdf",
	}

	doc := toDocument(u)
	if doc.Local.Password != "hash" || doc.Local.Email != "a@b.com" {
		t.Fatalf("expected credentials under local, got %+v", doc.Local)
	}

	back := fromDocument(doc)
	if back.ResetPasswordToken != "r" || back.ResetPasswordExpires == nil || !back.ResetPasswordExpires.Equal(expires) {
		t.Fatalf("unexpected reset state: %+v", back)
	}
	if back.ConfirmEmailToken != "c" || !back.Verified || back.Resume != u.Resume {
		t.Fatalf("unexpected user: %+v", back)
	}
}

func TestProfileSet_OnlyIncludesProvidedFields(t *testing.T) {
	last := "Hopper"
	set := profileSet(domain.ProfilePatch{LastName: &last})

	if set["local.lastName"] != "Hopper" {
		t.Fatalf("expected last name in $set, got %+v", set)
	}
	if _, ok := set["local.firstName"]; ok {
		t.Fatalf("did not expect first name in $set")
	}
	if _, ok := set["updatedAt"]; !ok {
		t.Fatalf("expected updatedAt in $set")
	}
}
