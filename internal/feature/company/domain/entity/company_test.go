package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestCompany_UserIDs(t *testing.T) {
	t.Parallel()

	c := Company{User1ID: uintPtr(1), User3ID: uintPtr(3)}

	ids := c.UserIDs()

	assert.Equal(t, uintPtr(1), ids[0])
	assert.Nil(t, ids[1])
	assert.Equal(t, uintPtr(3), ids[2])
}

func TestCompany_SetUserID(t *testing.T) {
	t.Parallel()

	var c Company
	c.SetUserID(0, uintPtr(10))
	c.SetUserID(1, uintPtr(20))
	c.SetUserID(2, uintPtr(30))
	c.SetUserID(3, uintPtr(40)) // 範囲外は無視される

	assert.Equal(t, uint(10), *c.User1ID)
	assert.Equal(t, uint(20), *c.User2ID)
	assert.Equal(t, uint(30), *c.User3ID)
}

// TestCompany_DetachUser は該当ユーザーを参照するスロットだけがクリアされることを検証します。
func TestCompany_DetachUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		company     Company
		userID      uint
		wantChanged bool
		want        Company
	}{
		{
			name:        "clears every matching slot",
			company:     Company{User1ID: uintPtr(5), User2ID: uintPtr(6), User3ID: uintPtr(5)},
			userID:      5,
			wantChanged: true,
			want:        Company{User2ID: uintPtr(6)},
		},
		{
			name:        "no matching slot",
			company:     Company{User1ID: uintPtr(1)},
			userID:      9,
			wantChanged: false,
			want:        Company{User1ID: uintPtr(1)},
		},
		{
			name:        "no linked users",
			company:     Company{},
			userID:      1,
			wantChanged: false,
			want:        Company{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := tt.company
			changed := c.DetachUser(tt.userID)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, c)
		})
	}
}
