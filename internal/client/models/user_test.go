package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalKnownAndOpaqueFields(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":42,"username":"alice","email":"a@b.com","isAdmin":false,"phone":"123","prefs":{"lang":"hi"}}`), &u)
	require.NoError(t, err)

	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@b.com", u.Email)
	assert.False(t, u.IsAdmin)

	phone, ok := u.Attr("phone")
	require.True(t, ok)
	assert.JSONEq(t, `"123"`, string(phone))
	prefs, ok := u.Attr("prefs")
	require.True(t, ok)
	assert.JSONEq(t, `{"lang":"hi"}`, string(prefs))
}

func TestUser_SnakeCaseAdminAlias(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"username":"root","is_admin":true}`), &u))
	assert.True(t, u.IsAdmin)

	// camelCase wins over the alias
	require.NoError(t, json.Unmarshal([]byte(`{"username":"root","is_admin":true,"isAdmin":false}`), &u))
	assert.False(t, u.IsAdmin)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "is_admin")
}

func TestUser_StringID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-1","username":"bob"}`), &u))
	assert.Equal(t, "u-1", u.ID)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-1","username":"bob","isAdmin":false}`, string(b))
}

func TestUser_RoundTripKeepsOpaqueFields(t *testing.T) {
	in := `{"id":7,"username":"carol","isAdmin":true,"avatar_url":"/uploads/x.png"}`
	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestUser_Valid(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.Valid())
	assert.False(t, (&User{ID: "1"}).Valid())
	assert.False(t, (&User{Username: "  "}).Valid())
	assert.True(t, (&User{Username: "alice"}).Valid())
}

func TestUser_BadFieldTypes(t *testing.T) {
	var u User
	require.Error(t, json.Unmarshal([]byte(`{"username":5}`), &u))
	require.Error(t, json.Unmarshal([]byte(`{"username":"x","isAdmin":"yes"}`), &u))
	require.Error(t, json.Unmarshal([]byte(`{"id":true}`), &u))
	require.Error(t, json.Unmarshal([]byte(`[]`), &u))
}

func TestUser_Merge_ResponseWinsAbsentFieldsKept(t *testing.T) {
	var stored User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"alice","isAdmin":false,"phone":"111","city":"Pune"}`), &stored))

	merged, err := stored.Merge(Record{
		"phone":    json.RawMessage(`"123"`),
		"is_admin": json.RawMessage(`true`),
	})
	require.NoError(t, err)

	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "alice", merged.Username)
	assert.True(t, merged.IsAdmin, "role is recomputed from the merged record")
	phone, _ := merged.Attr("phone")
	assert.JSONEq(t, `"123"`, string(phone))
	city, _ := merged.Attr("city")
	assert.JSONEq(t, `"Pune"`, string(city))

	// original untouched
	phone, _ = stored.Attr("phone")
	assert.JSONEq(t, `"111"`, string(phone))
}

func TestUser_Merge_AbsentAdminKeepsRole(t *testing.T) {
	stored := User{Username: "boss", IsAdmin: true}
	merged, err := stored.Merge(Record{"phone": json.RawMessage(`"9"`)})
	require.NoError(t, err)
	assert.True(t, merged.IsAdmin)
}

func TestRecordFromArgs(t *testing.T) {
	rec, err := RecordFromArgs([]string{"phone=123", "city=New Delhi", "verified=true", "name=\"x\""})
	require.NoError(t, err)

	assert.JSONEq(t, `123`, string(rec["phone"]))
	assert.JSONEq(t, `"New Delhi"`, string(rec["city"]))
	assert.JSONEq(t, `true`, string(rec["verified"]))
	assert.JSONEq(t, `"x"`, string(rec["name"]))

	_, err = RecordFromArgs([]string{"novalue"})
	require.ErrorIs(t, err, ErrIncorrectAttribute)
	_, err = RecordFromArgs([]string{"=x"})
	require.ErrorIs(t, err, ErrIncorrectAttribute)
}

func TestUser_IDKeepsItsJSONForm(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "numeric string", in: `{"id":"42","username":"alice","isAdmin":false}`},
		{name: "leading zeros", in: `{"id":"007","username":"alice","isAdmin":false}`},
		{name: "signed", in: `{"id":"+5","username":"alice","isAdmin":false}`},
		{name: "number", in: `{"id":42,"username":"alice","isAdmin":false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, json.Unmarshal([]byte(tt.in), &u))

			b, err := json.Marshal(u)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(b))
		})
	}
}

func TestUser_ProgrammaticIDIsString(t *testing.T) {
	b, err := json.Marshal(User{ID: "7", Username: "bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","username":"bob","isAdmin":false}`, string(b))
}

func TestUser_Merge_CamelCaseRoleWins(t *testing.T) {
	var stored User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"alice"}`), &stored))

	// порядок обхода map не должен влиять на роль
	for i := 0; i < 100; i++ {
		merged, err := stored.Merge(Record{
			"isAdmin":  json.RawMessage(`true`),
			"is_admin": json.RawMessage(`false`),
		})
		require.NoError(t, err)
		require.True(t, merged.IsAdmin)
	}
}
