package committeeroster_test

import (
	"testing"

	"github.com/dalemusser/memberhub/internal/app/store/queries/committeeroster"
	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	presidency := fx.CreateDesignation(ctx, "President", 1)
	secretary := fx.CreateDesignation(ctx, "General Secretary", 3)
	member := fx.CreateDesignation(ctx, "General Member", 10)

	location := fx.CreateLocation(ctx, "Dhaka", models.LevelDistrict, nil)
	president := fx.CreateUser(ctx, "Karim Ahmed", "01711000001")
	committee := fx.CreateCommittee(ctx, "Dhaka District Committee", models.TypeStudent, location.ID, president.ID)
	fx.AssignSeat(ctx, president.ID, committee.ID, presidency.ID)

	sec := fx.CreateUser(ctx, "Rahim Uddin", "01711000002")
	fx.AssignSeat(ctx, sec.ID, committee.ID, secretary.ID)
	m1 := fx.CreateUser(ctx, "Salma Khatun", "01711000003")
	fx.AssignSeat(ctx, m1.ID, committee.ID, member.ID)
	m2 := fx.CreateUser(ctx, "Abdul Karim", "01711000004")
	fx.AssignSeat(ctx, m2.ID, committee.ID, member.ID)

	// A user on another committee must not leak into this roster.
	other := fx.CreateUser(ctx, "Outsider", "01711000005")
	fx.AssignSeat(ctx, other.ID, primitive.NewObjectID(), member.ID)

	roster, err := committeeroster.Get(ctx, db, committee.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if roster.Title != "Dhaka District Committee" {
		t.Errorf("title = %q", roster.Title)
	}
	if roster.President == nil || roster.President.FullName != "Karim Ahmed" {
		t.Error("president not joined")
	}
	if roster.Location == nil || roster.Location.Title != "Dhaka" {
		t.Error("location not joined")
	}

	if got := len(roster.Members["President"]); got != 1 {
		t.Errorf("President group = %d members, want 1", got)
	}
	if got := len(roster.Members["General Secretary"]); got != 1 {
		t.Errorf("General Secretary group = %d members, want 1", got)
	}
	if got := len(roster.Members["General Member"]); got != 2 {
		t.Errorf("General Member group = %d members, want 2", got)
	}
	for _, m := range roster.Members["General Member"] {
		if m.ID == other.ID {
			t.Error("outsider leaked into roster")
		}
	}
}

func TestGet_DanglingDesignationKeepsMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fx.CreateDesignation(ctx, "General Member", 10)
	location := fx.CreateLocation(ctx, "Dhaka", models.LevelDistrict, nil)
	president := fx.CreateUser(ctx, "Karim Ahmed", "01711000001")
	committee := fx.CreateCommittee(ctx, "Dhaka District Committee", models.TypeStudent, location.ID, president.ID)

	seated := fx.CreateUser(ctx, "Rahim Uddin", "01711000002")
	fx.AssignSeat(ctx, seated.ID, committee.ID, member.ID)

	// A seat pointing at a deleted designation must not drop the member
	// from the roster.
	orphan := fx.CreateUser(ctx, "Salma Khatun", "01711000003")
	fx.AssignSeat(ctx, orphan.ID, committee.ID, primitive.NewObjectID())

	roster, err := committeeroster.Get(ctx, db, committee.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := len(roster.Members["General Member"]); got != 1 {
		t.Errorf("General Member group = %d members, want 1", got)
	}
	unknown := roster.Members[committeeroster.UnknownDesignation]
	if len(unknown) != 1 {
		t.Fatalf("%s group = %d members, want 1", committeeroster.UnknownDesignation, len(unknown))
	}
	if unknown[0].ID != orphan.ID {
		t.Errorf("got %q in the fallback group", unknown[0].FullName)
	}
}

func TestGet_EmptyCommittee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	location := fx.CreateLocation(ctx, "Gazipur", models.LevelDistrict, nil)
	committee := fx.CreateCommittee(ctx, "Gazipur Committee", models.TypeYouth, location.ID, primitive.NewObjectID())

	roster, err := committeeroster.Get(ctx, db, committee.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if roster.Members == nil {
		t.Fatal("members map must not be nil")
	}
	if len(roster.Members) != 0 {
		t.Errorf("members = %v, want empty", roster.Members)
	}
	// President reference points at no user document.
	if roster.President != nil {
		t.Error("dangling president reference should join to nothing")
	}
}

func TestGet_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := committeeroster.Get(ctx, db, primitive.NewObjectID())
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}
