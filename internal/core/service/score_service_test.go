package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/swachhta/civic-issues/internal/core/domain"
)

func seedActivity(db *memDB, userID string, issues, votes int) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for range issues {
		db.seedIssue(userID, domain.IssueStatusPending, at)
	}
	for i := range votes {
		db.seedVote("voted-"+string(rune('a'+i)), userID, at)
	}
}

// ---------------------------------------------------------------------------
// Reconcile
// ---------------------------------------------------------------------------

func TestScoreService_Reconcile_CorrectsDrift(t *testing.T) {
	users := newMemUsers("u1")
	db := newMemDB()
	seedActivity(db, "u1", 1, 10)
	svc := NewScoreService(users, db, discardLogger)

	snap, err := svc.Reconcile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Points != 60 {
		t.Errorf("expected 60 points, got %d", snap.Points)
	}
	want := []string{domain.BadgeFirstIssue, domain.BadgeCommunityHelper}
	if !slices.Equal(snap.Badges, want) {
		t.Errorf("expected badges %v, got %v", want, snap.Badges)
	}
	if snap.IssuesCreated != 1 || snap.VotesCast != 10 {
		t.Errorf("unexpected counts: %+v", snap)
	}

	stored := users.stored("u1")
	if stored.Points != 60 || !slices.Equal(stored.Badges, want) {
		t.Errorf("stored fields not updated: %+v", stored)
	}
}

func TestScoreService_Reconcile_IsIdempotent(t *testing.T) {
	users := newMemUsers("u1")
	db := newMemDB()
	seedActivity(db, "u1", 2, 3)
	svc := NewScoreService(users, db, discardLogger)

	if _, err := svc.Reconcile(context.Background(), "u1"); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if users.casCalls != 1 {
		t.Fatalf("expected one write on first reconcile, got %d", users.casCalls)
	}

	snap, err := svc.Reconcile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if users.casCalls != 1 {
		t.Errorf("second reconcile must not write, got %d writes", users.casCalls)
	}
	if snap.Points != 35 {
		t.Errorf("expected 35 points, got %d", snap.Points)
	}
}

func TestScoreService_Reconcile_BadgeOrderIsNotDrift(t *testing.T) {
	users := newMemUsers("u1")
	users.byID["u1"].Points = 60
	users.byID["u1"].Badges = []string{domain.BadgeCommunityHelper, domain.BadgeFirstIssue}
	db := newMemDB()
	seedActivity(db, "u1", 1, 10)
	svc := NewScoreService(users, db, discardLogger)

	if _, err := svc.Reconcile(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.casCalls != 0 {
		t.Errorf("reordered badges must not trigger a write")
	}
}

func TestScoreService_Reconcile_RevokesBadgesWhenActivityDrops(t *testing.T) {
	users := newMemUsers("u1")
	users.byID["u1"].Points = 50
	users.byID["u1"].Badges = []string{domain.BadgeCommunityHelper}
	db := newMemDB()
	seedActivity(db, "u1", 0, 9)
	svc := NewScoreService(users, db, discardLogger)

	snap, err := svc.Reconcile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Points != 45 || len(snap.Badges) != 0 {
		t.Errorf("expected 45 points and no badges, got %+v", snap)
	}
	if stored := users.stored("u1"); len(stored.Badges) != 0 {
		t.Errorf("badge must be revoked in storage, got %v", stored.Badges)
	}
}

func TestScoreService_Reconcile_StoreErrorLeavesFieldsUntouched(t *testing.T) {
	users := newMemUsers("u1")
	users.byID["u1"].Points = 999
	db := newMemDB()
	db.countErr = domain.ErrStoreUnavailable
	svc := NewScoreService(users, db, discardLogger)

	_, err := svc.Reconcile(context.Background(), "u1")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if users.casCalls != 0 {
		t.Errorf("no write may happen after a failed count")
	}
	if users.stored("u1").Points != 999 {
		t.Errorf("stored points changed")
	}
}

func TestScoreService_Reconcile_ReadErrorPropagates(t *testing.T) {
	users := newMemUsers("u1")
	users.getErr = domain.ErrStoreUnavailable
	svc := NewScoreService(users, newMemDB(), discardLogger)

	if _, err := svc.Reconcile(context.Background(), "u1"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestScoreService_Reconcile_UnknownUser(t *testing.T) {
	svc := NewScoreService(newMemUsers(), newMemDB(), discardLogger)

	if _, err := svc.Reconcile(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestScoreService_Reconcile_RetriesAfterConcurrentWrite(t *testing.T) {
	users := newMemUsers("u1")
	db := newMemDB()
	seedActivity(db, "u1", 1, 0)

	interfered := false
	users.beforeCAS = func(u *domain.User) {
		if !interfered {
			interfered = true
			u.Points = 5
		}
	}
	svc := NewScoreService(users, db, discardLogger)

	snap, err := svc.Reconcile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users.casCalls != 2 {
		t.Errorf("expected a retry after the lost write, got %d attempts", users.casCalls)
	}
	if snap.Points != 10 || users.stored("u1").Points != 10 {
		t.Errorf("expected 10 points stored, got snapshot %d stored %d", snap.Points, users.stored("u1").Points)
	}
}

func TestScoreService_Reconcile_GivesUpAfterRepeatedConflicts(t *testing.T) {
	users := newMemUsers("u1")
	db := newMemDB()
	seedActivity(db, "u1", 1, 0)

	users.beforeCAS = func(u *domain.User) { u.Points++ }
	svc := NewScoreService(users, db, discardLogger)

	snap, err := svc.Reconcile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("conflicts must not surface as errors: %v", err)
	}
	if users.casCalls != maxReconcileAttempts {
		t.Errorf("expected %d attempts, got %d", maxReconcileAttempts, users.casCalls)
	}
	if snap.Points != 10 {
		t.Errorf("expected computed snapshot of 10 points, got %d", snap.Points)
	}
}
