package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/huddle/internal/domain"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Field
}

func TestPassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Abcdef12", true},
		{"abcdefg1", false},
		{"ABCDEFG1", false},
		{"Abcdefgh", false},
		{"Abc12", false},
		{"пароль12", false},
		{"Пароль1a", true},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := Password(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, "password", fieldOf(t, err))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+79991234567", "+79991234567", true},
		{"+7 (999) 123-45-67", "+79991234567", true},
		{"+1 555 123 4567", "+15551234567", true},
		{"+155512345678", "+155512345678", true},
		{"89991234567", "", false},
		{"+4412345678901", "", false},
		{"+7999123", "", false},
		{"+7999123456789", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Phone(tt.in)
			if !tt.ok {
				assert.Equal(t, "phone", fieldOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBirthDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, BirthDate(time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC), now))
	assert.Error(t, BirthDate(time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Error(t, BirthDate(time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Error(t, BirthDate(time.Time{}, now))
}

func TestRegistration(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	adult := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("username variant", func(t *testing.T) {
		creds, err := Registration(domain.Credentials{Username: " alice ", Password: "Abcdef12", AgeConfirmed: true}, now)
		require.NoError(t, err)
		assert.Equal(t, "alice", creds.Username)
	})

	t.Run("weak password checked first", func(t *testing.T) {
		_, err := Registration(domain.Credentials{Username: "alice", Password: "abcdefg1", AgeConfirmed: true}, now)
		assert.Equal(t, "password", fieldOf(t, err))
	})

	t.Run("phone variant normalizes", func(t *testing.T) {
		creds, err := Registration(domain.Credentials{
			Phone: "+7 999 123 45 67", Password: "Abcdef12", BirthDate: adult, AgeConfirmed: true,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, "+79991234567", creds.Phone)
	})

	t.Run("phone variant requires birth date", func(t *testing.T) {
		_, err := Registration(domain.Credentials{Phone: "+79991234567", Password: "Abcdef12", AgeConfirmed: true}, now)
		assert.Equal(t, "birth date", fieldOf(t, err))
	})

	t.Run("phone variant rejects bad number", func(t *testing.T) {
		_, err := Registration(domain.Credentials{Phone: "12345", Password: "Abcdef12", BirthDate: adult, AgeConfirmed: true}, now)
		assert.Equal(t, "phone", fieldOf(t, err))
	})

	t.Run("too young", func(t *testing.T) {
		_, err := Registration(domain.Credentials{
			Phone: "+79991234567", Password: "Abcdef12", BirthDate: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), AgeConfirmed: true,
		}, now)
		assert.Equal(t, "birth date", fieldOf(t, err))
	})

	t.Run("age confirmation required", func(t *testing.T) {
		_, err := Registration(domain.Credentials{Username: "alice", Password: "Abcdef12"}, now)
		assert.Equal(t, "age confirmation", fieldOf(t, err))
	})

	t.Run("missing username", func(t *testing.T) {
		_, err := Registration(domain.Credentials{Password: "Abcdef12", AgeConfirmed: true}, now)
		assert.Equal(t, "username", fieldOf(t, err))
	})
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login(domain.Credentials{Username: "alice", Password: "x"}))
	assert.NoError(t, Login(domain.Credentials{Phone: "+79991234567", Password: "x"}))
	assert.Equal(t, "username", fieldOf(t, Login(domain.Credentials{Password: "x"})))
	assert.Equal(t, "password", fieldOf(t, Login(domain.Credentials{Username: "alice"})))
}

func TestSearchQuery(t *testing.T) {
	assert.False(t, SearchQuery("ab"))
	assert.False(t, SearchQuery("  ab  "))
	assert.True(t, SearchQuery("abc"))
	assert.True(t, SearchQuery("Аня"), "counted in runes, not bytes")
	assert.False(t, SearchQuery("Ан"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank("content", "hi"))
	assert.Equal(t, "content", fieldOf(t, NotBlank("content", " \t\n")))
}
