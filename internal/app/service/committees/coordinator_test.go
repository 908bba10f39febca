package committees

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// In-memory fakes. The runner snapshots fake state before the body runs
// and restores it on error, mirroring a real transaction abort.

type fakeUsers struct {
	byID    map[primitive.ObjectID]*models.User
	failSet error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUsers) SetAssignment(_ context.Context, userID, committeeID, designationID primitive.ObjectID) error {
	if f.failSet != nil {
		return f.failSet
	}
	u, ok := f.byID[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c, d := committeeID, designationID
	u.AssignedCommittee = &c
	u.AssignedPosition = &d
	return nil
}

func (f *fakeUsers) ClearAssignment(_ context.Context, userID primitive.ObjectID) error {
	u, ok := f.byID[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.AssignedCommittee = nil
	u.AssignedPosition = nil
	return nil
}

func (f *fakeUsers) ClearCommitteeAssignments(_ context.Context, committeeID primitive.ObjectID) (int64, error) {
	var n int64
	for _, u := range f.byID {
		if u.AssignedCommittee != nil && *u.AssignedCommittee == committeeID {
			u.AssignedCommittee = nil
			u.AssignedPosition = nil
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) snapshot() map[primitive.ObjectID]models.User {
	s := make(map[primitive.ObjectID]models.User, len(f.byID))
	for id, u := range f.byID {
		s[id] = *u
	}
	return s
}

func (f *fakeUsers) restore(s map[primitive.ObjectID]models.User) {
	f.byID = make(map[primitive.ObjectID]*models.User, len(s))
	for id, u := range s {
		cp := u
		f.byID[id] = &cp
	}
}

type fakeCommittees struct {
	byID map[primitive.ObjectID]*models.Committee
}

func newFakeCommittees() *fakeCommittees {
	return &fakeCommittees{byID: map[primitive.ObjectID]*models.Committee{}}
}

func (f *fakeCommittees) GetByID(_ context.Context, id primitive.ObjectID) (*models.Committee, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommittees) ExistsForLocation(_ context.Context, locationID primitive.ObjectID, ctype string) (bool, error) {
	for _, c := range f.byID {
		if c.LocationID == locationID && c.Type == ctype {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommittees) CentralExists(_ context.Context) (bool, error) {
	for _, c := range f.byID {
		if c.Type == models.TypeCentral {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommittees) Insert(_ context.Context, c models.Committee) (models.Committee, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	cp := c
	f.byID[c.ID] = &cp
	return c, nil
}

func (f *fakeCommittees) SetPresident(_ context.Context, id, presidentID primitive.ObjectID) error {
	c, ok := f.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	c.PresidentID = presidentID
	return nil
}

func (f *fakeCommittees) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakeCommittees) snapshot() map[primitive.ObjectID]models.Committee {
	s := make(map[primitive.ObjectID]models.Committee, len(f.byID))
	for id, c := range f.byID {
		s[id] = *c
	}
	return s
}

func (f *fakeCommittees) restore(s map[primitive.ObjectID]models.Committee) {
	f.byID = make(map[primitive.ObjectID]*models.Committee, len(s))
	for id, c := range s {
		cp := c
		f.byID[id] = &cp
	}
}

type fakeLocations struct {
	byID map[primitive.ObjectID]*models.Location
}

func newFakeLocations() *fakeLocations {
	return &fakeLocations{byID: map[primitive.ObjectID]*models.Location{}}
}

func (f *fakeLocations) add(title string) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.byID[id] = &models.Location{ID: id, Title: title, Level: models.LevelDistrict}
	return id
}

func (f *fakeLocations) GetByID(_ context.Context, id primitive.ObjectID) (*models.Location, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *l
	return &cp, nil
}

type fakeDesignations struct {
	byID map[primitive.ObjectID]*models.Designation
}

func newFakeDesignations() *fakeDesignations {
	return &fakeDesignations{byID: map[primitive.ObjectID]*models.Designation{}}
}

func (f *fakeDesignations) add(title string, level int) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.byID[id] = &models.Designation{ID: id, Title: title, Level: level}
	return id
}

func (f *fakeDesignations) GetByID(_ context.Context, id primitive.ObjectID) (*models.Designation, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDesignations) GetByLevel(_ context.Context, level int) (*models.Designation, error) {
	for _, d := range f.byID {
		if d.Level == level {
			cp := *d
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeTombstones struct {
	rows []models.CommitteeTombstone
}

func (f *fakeTombstones) Insert(_ context.Context, t models.CommitteeTombstone) error {
	f.rows = append(f.rows, t)
	return nil
}

// fakeRunner restores fake state when the body fails, like a transaction
// abort would.
type fakeRunner struct {
	users      *fakeUsers
	committees *fakeCommittees
	calls      int
}

func (r *fakeRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	us := r.users.snapshot()
	cs := r.committees.snapshot()
	if err := fn(ctx); err != nil {
		r.users.restore(us)
		r.committees.restore(cs)
		return err
	}
	return nil
}

type fixture struct {
	users        *fakeUsers
	committees   *fakeCommittees
	locations    *fakeLocations
	designations *fakeDesignations
	tombstones   *fakeTombstones
	runner       *fakeRunner
	coord        *Coordinator

	presidencyID primitive.ObjectID
	memberDesgID primitive.ObjectID
}

func newFixture() *fixture {
	f := &fixture{
		users:        newFakeUsers(),
		committees:   newFakeCommittees(),
		locations:    newFakeLocations(),
		designations: newFakeDesignations(),
		tombstones:   &fakeTombstones{},
	}
	f.presidencyID = f.designations.add("President", models.PresidentLevel)
	f.memberDesgID = f.designations.add("General Member", 10)
	f.runner = &fakeRunner{users: f.users, committees: f.committees}
	f.coord = NewCoordinator(f.users, f.committees, f.locations, f.designations, f.tombstones, f.runner, zap.NewNop())
	return f
}

func (f *fixture) addLocation() primitive.ObjectID {
	return f.locations.add("Location " + primitive.NewObjectID().Hex()[:6])
}

func (f *fixture) addUser() primitive.ObjectID {
	id := primitive.NewObjectID()
	f.users.byID[id] = &models.User{ID: id, FullName: "Member " + id.Hex()[:6], Verified: true, AccountStatus: models.StatusApproved}
	return id
}

func (f *fixture) addCommittee(ctype string, locationID, presidentID primitive.ObjectID) primitive.ObjectID {
	c, _ := f.committees.Insert(context.Background(), models.Committee{
		Title:       "Committee " + ctype,
		Type:        ctype,
		LocationID:  locationID,
		PresidentID: presidentID,
	})
	if !presidentID.IsZero() {
		_ = f.users.SetAssignment(context.Background(), presidentID, c.ID, f.presidencyID)
	}
	return c.ID
}

func TestCreateCommittee_SeatsPresident(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	president := f.addUser()
	location := f.addLocation()

	created, err := f.coord.CreateCommittee(ctx, CreateCommitteeInput{
		Title:       "Dhaka District",
		Type:        models.TypeStudent,
		LocationID:  location,
		PresidentID: president,
	})
	if err != nil {
		t.Fatalf("CreateCommittee: %v", err)
	}
	if created.ID.IsZero() {
		t.Fatal("expected assigned committee id")
	}
	if created.PresidentID != president {
		t.Errorf("president = %s, want %s", created.PresidentID.Hex(), president.Hex())
	}

	u, _ := f.users.GetByID(ctx, president)
	if u.AssignedCommittee == nil || *u.AssignedCommittee != created.ID {
		t.Error("president not seated on the new committee")
	}
	if u.AssignedPosition == nil || *u.AssignedPosition != f.presidencyID {
		t.Error("president not seated at presidency rank")
	}
	if f.runner.calls != 1 {
		t.Errorf("transactions = %d, want 1", f.runner.calls)
	}
}

func TestCreateCommittee_PresidentMissing(t *testing.T) {
	f := newFixture()
	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Ghost",
		Type:        models.TypeStudent,
		LocationID:  primitive.NewObjectID(),
		PresidentID: primitive.NewObjectID(),
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if len(f.committees.byID) != 0 {
		t.Error("committee persisted despite missing president")
	}
}

func TestCreateCommittee_LocationMissing(t *testing.T) {
	f := newFixture()
	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Nowhere",
		Type:        models.TypeStudent,
		LocationID:  primitive.NewObjectID(),
		PresidentID: f.addUser(),
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
	if len(f.committees.byID) != 0 {
		t.Error("committee persisted despite unknown location")
	}
}

func TestCreateCommittee_DuplicateLocationType(t *testing.T) {
	f := newFixture()
	location := f.addLocation()
	f.addCommittee(models.TypeStudent, location, f.addUser())

	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Second",
		Type:        models.TypeStudent,
		LocationID:  location,
		PresidentID: f.addUser(),
	})
	if !apperr.IsConflict(err) {
		t.Fatalf("err = %v, want Conflict", err)
	}
}

func TestCreateCommittee_SecondCentralRejected(t *testing.T) {
	f := newFixture()
	f.addCommittee(models.TypeCentral, primitive.NewObjectID(), f.addUser())

	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Central Again",
		Type:        models.TypeCentral,
		LocationID:  f.addLocation(),
		PresidentID: f.addUser(),
	})
	if !apperr.IsConflict(err) {
		t.Fatalf("err = %v, want Conflict", err)
	}
}

func TestCreateCommittee_PresidentAlreadySeatedElsewhere(t *testing.T) {
	f := newFixture()
	president := f.addUser()
	f.addCommittee(models.TypeStudent, primitive.NewObjectID(), president)

	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Another",
		Type:        models.TypeYouth,
		LocationID:  primitive.NewObjectID(),
		PresidentID: president,
	})
	if !apperr.IsBadRequest(err) {
		t.Fatalf("err = %v, want BadRequest", err)
	}
}

func TestCreateCommittee_RollsBackOnSeatFailure(t *testing.T) {
	f := newFixture()
	president := f.addUser()
	f.users.failSet = errors.New("write conflict")

	_, err := f.coord.CreateCommittee(context.Background(), CreateCommitteeInput{
		Title:       "Doomed",
		Type:        models.TypeStudent,
		LocationID:  f.addLocation(),
		PresidentID: president,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if apperr.KindOf(err) != apperr.Internal {
		t.Errorf("kind = %v, want Internal", apperr.KindOf(err))
	}
	if len(f.committees.byID) != 0 {
		t.Error("committee survived an aborted transaction")
	}
}

func TestChangePresident_SwapsSeats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := f.addUser()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), old)
	next := f.addUser()

	updated, err := f.coord.ChangePresident(ctx, committeeID, next)
	if err != nil {
		t.Fatalf("ChangePresident: %v", err)
	}
	if updated.PresidentID != next {
		t.Errorf("president = %s, want %s", updated.PresidentID.Hex(), next.Hex())
	}

	prev, _ := f.users.GetByID(ctx, old)
	if prev.AssignedCommittee != nil || prev.AssignedPosition != nil {
		t.Error("previous president still seated")
	}
	cur, _ := f.users.GetByID(ctx, next)
	if cur.AssignedCommittee == nil || *cur.AssignedCommittee != committeeID {
		t.Error("new president not seated")
	}
	if cur.AssignedPosition == nil || *cur.AssignedPosition != f.presidencyID {
		t.Error("new president not at presidency rank")
	}
	stored, _ := f.committees.GetByID(ctx, committeeID)
	if stored.PresidentID != next {
		t.Error("committee document not updated")
	}
}

func TestChangePresident_SamePresidentIsNoOp(t *testing.T) {
	f := newFixture()
	president := f.addUser()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), president)

	if _, err := f.coord.ChangePresident(context.Background(), committeeID, president); err != nil {
		t.Fatalf("ChangePresident: %v", err)
	}
	if f.runner.calls != 0 {
		t.Errorf("transactions = %d, want 0 for a no-op", f.runner.calls)
	}
}

func TestChangePresident_CommitteeMissing(t *testing.T) {
	f := newFixture()
	_, err := f.coord.ChangePresident(context.Background(), primitive.NewObjectID(), f.addUser())
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestDisbandCommittee_ClearsMembersAndLeavesTombstone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	president := f.addUser()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), president)

	member := f.addUser()
	if _, err := f.coord.AssignMember(ctx, member, f.memberDesgID, committeeID); err != nil {
		t.Fatalf("AssignMember: %v", err)
	}

	if err := f.coord.DisbandCommittee(ctx, committeeID, "inactive for two years"); err != nil {
		t.Fatalf("DisbandCommittee: %v", err)
	}

	if _, ok := f.committees.byID[committeeID]; ok {
		t.Error("committee still present after disband")
	}
	for _, id := range []primitive.ObjectID{president, member} {
		u, _ := f.users.GetByID(ctx, id)
		if u.AssignedCommittee != nil || u.AssignedPosition != nil {
			t.Errorf("user %s still seated after disband", id.Hex())
		}
	}
	if len(f.tombstones.rows) != 1 {
		t.Fatalf("tombstones = %d, want 1", len(f.tombstones.rows))
	}
	ts := f.tombstones.rows[0]
	if ts.CommitteeID != committeeID {
		t.Error("tombstone references wrong committee")
	}
	if ts.Reason != "inactive for two years" {
		t.Errorf("reason = %q", ts.Reason)
	}
	if ts.MembersCleared != 2 {
		t.Errorf("members cleared = %d, want 2", ts.MembersCleared)
	}
}

func TestDeleteCommittee_CascadesWithoutTombstone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	president := f.addUser()
	committeeID := f.addCommittee(models.TypeYouth, primitive.NewObjectID(), president)

	if err := f.coord.DeleteCommittee(ctx, committeeID); err != nil {
		t.Fatalf("DeleteCommittee: %v", err)
	}
	if _, ok := f.committees.byID[committeeID]; ok {
		t.Error("committee still present after delete")
	}
	u, _ := f.users.GetByID(ctx, president)
	if u.AssignedCommittee != nil {
		t.Error("president still seated after delete")
	}
	if len(f.tombstones.rows) != 0 {
		t.Error("delete must not write a tombstone")
	}
}

func TestDeleteCommittee_Missing(t *testing.T) {
	f := newFixture()
	err := f.coord.DeleteCommittee(context.Background(), primitive.NewObjectID())
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestAssignMember_Places(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), f.addUser())
	member := f.addUser()

	u, err := f.coord.AssignMember(ctx, member, f.memberDesgID, committeeID)
	if err != nil {
		t.Fatalf("AssignMember: %v", err)
	}
	if u.AssignedCommittee == nil || *u.AssignedCommittee != committeeID {
		t.Error("returned user not seated")
	}
	stored, _ := f.users.GetByID(ctx, member)
	if stored.AssignedPosition == nil || *stored.AssignedPosition != f.memberDesgID {
		t.Error("stored user not seated at designation")
	}
}

func TestAssignMember_PresidencyRankConflict(t *testing.T) {
	f := newFixture()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), f.addUser())

	_, err := f.coord.AssignMember(context.Background(), f.addUser(), f.presidencyID, committeeID)
	if !apperr.IsBadRequest(err) {
		t.Fatalf("err = %v, want BadRequest", err)
	}
}

func TestAssignMember_PresidentReassignSameSeatAllowed(t *testing.T) {
	f := newFixture()
	president := f.addUser()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), president)

	// Reapplying the presidency to the sitting president is not a
	// conflict.
	if _, err := f.coord.AssignMember(context.Background(), president, f.presidencyID, committeeID); err != nil {
		t.Fatalf("AssignMember: %v", err)
	}
}

func TestAssignMember_DesignationMissing(t *testing.T) {
	f := newFixture()
	committeeID := f.addCommittee(models.TypeStudent, primitive.NewObjectID(), f.addUser())

	_, err := f.coord.AssignMember(context.Background(), f.addUser(), primitive.NewObjectID(), committeeID)
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}
