package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDNeverReused(t *testing.T) {
	l := NewLedger()

	assert.Equal(t, "001", l.NextID())
	assert.Equal(t, "002", l.NextID())
	delete(l.Students, "002")
	assert.Equal(t, "003", l.NextID())
	assert.Equal(t, 3, l.LastID)
}

func TestIDsNumericOrder(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"010", "1000", "002", "999"} {
		l.Students[id] = &StudentRecord{ID: id}
	}
	assert.Equal(t, []string{"002", "010", "999", "1000"}, l.IDs())
}

func TestDeriveLogin(t *testing.T) {
	assert.Equal(t, "bruno_001", DeriveLogin("Bruno Silva", "001"))
	assert.Equal(t, "ana_042", DeriveLogin("  ANA  ", "042"))
	assert.Equal(t, "_003", DeriveLogin("", "003"))
}

func TestNewWorkoutRecordKeepsLinesVerbatim(t *testing.T) {
	w := NewWorkoutRecord("A", "legs", "squat\n\n lunge ")

	assert.Equal(t, []string{"squat", "", " lunge "}, w.Exercises)
	assert.Equal(t, []bool{false, false, false}, w.Completed)
	assert.True(t, w.HasExercise(2))
	assert.False(t, w.HasExercise(3))
	assert.False(t, w.HasExercise(-1))
}

func TestDecodeLedgerBackfillsLegacyRecords(t *testing.T) {
	legacy := []byte(`{
		"students": {
			"001": {"name": "Bruno Silva", "weight": 80, "height": 180,
				"workouts": [{"name": "A", "description": "", "exercises": ["squat", "press"]}]}
		}
	}`)

	l, err := DecodeLedger(legacy)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, l.SchemaVersion)
	assert.Equal(t, 0, l.LastID)

	s := l.Students["001"]
	require.NotNil(t, s)
	assert.Equal(t, "001", s.ID)
	assert.Nil(t, s.Password)
	assert.Equal(t, 0, s.CompletedWorkouts)
	assert.Equal(t, []WeightEntry{}, s.WeightHistory)
	assert.Equal(t, "bruno_001", s.Login)
	assert.Equal(t, "", s.Email)
	require.Len(t, s.Workouts, 1)
	assert.Equal(t, []bool{false, false}, s.Workouts[0].Completed)
}

func TestDecodeLedgerKeepsExistingLogin(t *testing.T) {
	data := []byte(`{"last_id": 4, "students": {"004": {"name": "Carla Dias", "login": "custom_004", "password": "x", "completed_workouts": 7}}}`)

	l, err := DecodeLedger(data)
	require.NoError(t, err)
	s := l.Students["004"]
	assert.Equal(t, "custom_004", s.Login)
	require.NotNil(t, s.Password)
	assert.Equal(t, "x", *s.Password)
	assert.Equal(t, 7, s.CompletedWorkouts)
	assert.Equal(t, 4, l.LastID)
}

func TestDecodeLedgerRepairsCompletionParity(t *testing.T) {
	data := []byte(`{"schema_version": 1, "last_id": 1, "students": {"001": {"name": "A", "login": "a_001", "email": "", "completed_workouts": 0, "weight_history": [],
		"workouts": [{"name": "W", "description": "", "exercises": ["a", "b", "c"], "completed": [true]}]}}}`)

	l, err := DecodeLedger(data)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, l.Students["001"].Workouts[0].Completed)
}

func TestDecodeLedgerDerivesMissingLoginOnCurrentSchema(t *testing.T) {
	data := []byte(`{"schema_version": 1, "last_id": 1, "students": {"001": {"name": "Bruno Silva"}}}`)

	l, err := DecodeLedger(data)
	require.NoError(t, err)
	s := l.Students["001"]
	require.NotNil(t, s)
	assert.Equal(t, "bruno_001", s.Login)
	assert.Equal(t, "", s.Email)
	assert.Equal(t, []WeightEntry{}, s.WeightHistory)
	assert.Nil(t, s.Password)
}

func TestDecodeLedgerRejectsNewerSchema(t *testing.T) {
	_, err := DecodeLedger([]byte(`{"schema_version": 99}`))
	assert.Error(t, err)
}

func TestLedgerRoundTrip(t *testing.T) {
	pw := "abc123"
	original := NewLedger()
	id := original.NextID()
	original.Students[id] = &StudentRecord{
		ID:                id,
		Name:              "Bruno Silva",
		Weight:            80.5,
		Height:            180,
		Email:             "b@x.com",
		Login:             "bruno_001",
		Password:          &pw,
		CompletedWorkouts: 2,
		WeightHistory:     []WeightEntry{{Weight: 82, Date: "2026-01-02"}, {Weight: 80.5, Date: "2026-02-03"}},
		Workouts: []WorkoutRecord{
			{Name: "A", Description: "push", Exercises: []string{"press", ""}, Completed: []bool{true, false}},
		},
	}
	original.NextID()

	data, err := EncodeLedger(original)
	require.NoError(t, err)
	decoded, err := DecodeLedger(data)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestTrainerDirectoryKeepsOrder(t *testing.T) {
	dir := NewTrainerDirectory()
	dir.Put(TrainerAccount{Login: "zeca", Email: "z@x.com", Password: "1"})
	dir.Put(TrainerAccount{Login: "ana", Email: "a@x.com", Password: "2"})
	dir.Put(TrainerAccount{Login: "mia", Email: "m@x.com", Password: "3"})
	dir.Put(TrainerAccount{Login: "ana", Email: "a2@x.com", Password: "4"})

	data, err := json.Marshal(dir)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeca":{"email":"z@x.com","password":"1"},"ana":{"email":"a2@x.com","password":"4"},"mia":{"email":"m@x.com","password":"3"}}`, string(data))

	decoded := NewTrainerDirectory()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"zeca", "ana", "mia"}, decoded.Logins())
	acc, ok := decoded.Get("ana")
	require.True(t, ok)
	assert.Equal(t, TrainerAccount{Login: "ana", Email: "a2@x.com", Password: "4"}, acc)
}

func TestTrainerDirectoryRejectsNonObject(t *testing.T) {
	dir := NewTrainerDirectory()
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), dir))
}
