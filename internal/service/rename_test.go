package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flightbooking/internal/auth"
	apperrors "flightbooking/internal/errors"
	"flightbooking/internal/events"
	"flightbooking/internal/model"
	"flightbooking/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestAirlineService_UpdatePropagatesRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAirlineService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, f.publisher)

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	labelled := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(24), 10)
	created := testutil.FlightAt(t, f.db, "Legacy Label", hoursFromNow(24), 10)
	require.NoError(t, f.db.Model(created).Update("created_by", owner.ID).Error)
	unrelated := testutil.FlightAt(t, f.db, "Condor", hoursFromNow(24), 10)
	require.NoError(t, f.db.Create(&model.Review{UserID: customer.ID, Airline: owner.Name, Rating: 4, Comment: "ok"}).Error)

	updated, err := svc.Update(ctx, airline.ID, UpdateAirlineInput{Name: strPtr("  BlueSky ")})
	require.NoError(t, err)
	assert.Equal(t, "BlueSky", updated.Name)

	for _, id := range []uint{labelled.ID, created.ID} {
		var fl model.Flight
		require.NoError(t, f.db.First(&fl, id).Error)
		assert.Equal(t, "BlueSky", fl.Airline)
	}
	var other model.Flight
	require.NoError(t, f.db.First(&other, unrelated.ID).Error)
	assert.Equal(t, "Condor", other.Airline)

	var review model.Review
	require.NoError(t, f.db.First(&review).Error)
	assert.Equal(t, "BlueSky", review.Airline)

	var user model.User
	require.NoError(t, f.db.First(&user, owner.ID).Error)
	assert.Equal(t, "BlueSky", user.Name)

	assert.Equal(t, []string{events.AirlineRenamed}, f.publisher.types())
}

func TestAirlineService_UpdateRenameRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAirlineService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, f.publisher)

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	customer := testutil.CreateUser(t, f.db, "traveller", model.RoleUser)
	labelled := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(24), 10)
	created := testutil.FlightAt(t, f.db, "Legacy Label", hoursFromNow(24), 10)
	require.NoError(t, f.db.Model(created).Update("created_by", owner.ID).Error)
	require.NoError(t, f.db.Create(&model.Review{UserID: customer.ID, Airline: owner.Name, Rating: 4, Comment: "ok"}).Error)

	// users and flights are already renamed when the reviews update fails
	injected := errors.New("injected failure")
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:fail_review_rename", func(tx *gorm.DB) {
		if tx.Statement.Table == "reviews" {
			_ = tx.AddError(injected)
		}
	}))

	_, err := svc.Update(ctx, airline.ID, UpdateAirlineInput{Name: strPtr("BlueSky")})
	require.ErrorIs(t, err, injected)

	var user model.User
	require.NoError(t, f.db.First(&user, owner.ID).Error)
	assert.Equal(t, "SkyLine", user.Name)

	var stored model.Airline
	require.NoError(t, f.db.First(&stored, airline.ID).Error)
	assert.Equal(t, "SkyLine", stored.Name)

	var fl model.Flight
	require.NoError(t, f.db.First(&fl, labelled.ID).Error)
	assert.Equal(t, "SkyLine", fl.Airline)
	require.NoError(t, f.db.First(&fl, created.ID).Error)
	assert.Equal(t, "Legacy Label", fl.Airline)

	var review model.Review
	require.NoError(t, f.db.First(&review).Error)
	assert.Equal(t, "SkyLine", review.Airline)

	assert.Empty(t, f.publisher.types())
}

func TestAirlineService_UpdateSameNameIsNoop(t *testing.T) {
	f := newFixture(t)
	svc := NewAirlineService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, f.publisher)

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(24), 10)

	_, err := svc.Update(context.Background(), airline.ID, UpdateAirlineInput{Name: strPtr("SkyLine")})
	require.NoError(t, err)

	var fl model.Flight
	require.NoError(t, f.db.First(&fl, flight.ID).Error)
	assert.Equal(t, "SkyLine", fl.Airline)
	assert.Empty(t, f.publisher.types())
}

func TestAirlineService_UpdateRejectsTakenKeys(t *testing.T) {
	tests := []struct {
		name          string
		input         UpdateAirlineInput
		expectedError error
	}{
		{name: "name of another account", input: UpdateAirlineInput{Name: strPtr("traveller")}, expectedError: apperrors.ErrNameTaken},
		{name: "email of another account", input: UpdateAirlineInput{Email: strPtr("TRAVELLER@example.com")}, expectedError: apperrors.ErrEmailTaken},
		{name: "code of another airline", input: UpdateAirlineInput{Code: strPtr("cnd")}, expectedError: apperrors.ErrCodeTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewAirlineService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, f.publisher)
			_, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
			testutil.CreateAirline(t, f.db, "Condor", "CND")
			testutil.CreateUser(t, f.db, "traveller", model.RoleUser)

			_, err := svc.Update(context.Background(), airline.ID, tt.input)

			assert.ErrorIs(t, err, tt.expectedError)
			var stored model.Airline
			require.NoError(t, f.db.First(&stored, airline.ID).Error)
			assert.Equal(t, "SkyLine", stored.Name)
			assert.Equal(t, "SKY", stored.Code)
		})
	}
}

func TestAirlineService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewAirlineService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, f.publisher)

	airline, err := svc.Create(context.Background(), CreateAirlineInput{
		Name:     "SkyLine",
		Code:     "sky",
		CUIT:     "30-11111111-1",
		Email:    "Ops@SkyLine.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "SKY", airline.Code)
	require.NotNil(t, airline.User)
	assert.Equal(t, model.RoleAirline, airline.User.Role)
	assert.Equal(t, "ops@skyline.com", airline.User.Email)

	_, err = svc.Create(context.Background(), CreateAirlineInput{
		Name: "Other", Code: "SKY", CUIT: "30-2", Email: "other@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, apperrors.ErrCodeTaken)
	assert.Equal(t, int64(1), testutil.Count(t, f.db, &model.User{}))
}

func TestUserService_UpdateProfileRenamesAirline(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, auth.NewBcryptHasher(bcrypt.MinCost), f.guard, nil, f.publisher)

	owner, airline := testutil.CreateAirline(t, f.db, "SkyLine", "SKY")
	flight := testutil.FlightAt(t, f.db, owner.Name, hoursFromNow(24), 10)

	user, err := svc.UpdateProfile(context.Background(), testutil.Principal(owner), ProfileUpdate{Name: strPtr("BlueSky")})
	require.NoError(t, err)
	assert.Equal(t, "BlueSky", user.Name)

	var fl model.Flight
	require.NoError(t, f.db.First(&fl, flight.ID).Error)
	assert.Equal(t, "BlueSky", fl.Airline)
	var stored model.Airline
	require.NoError(t, f.db.First(&stored, airline.ID).Error)
	assert.Equal(t, "BlueSky", stored.Name)
}
