package ws

import (
	"reflect"
	"testing"
)

func TestRegistry_SetThenGet(t *testing.T) {
	r := NewRegistry()
	c := &Client{id: "c1", userID: "u1"}

	if prev := r.Set("u1", c); prev != nil {
		t.Fatalf("Set() prev = %v, want nil", prev)
	}
	got, ok := r.Get("u1")
	if !ok || got != c {
		t.Fatalf("Get() = %v, %v; want c1, true", got, ok)
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	c1 := &Client{id: "c1", userID: "u1"}
	c2 := &Client{id: "c2", userID: "u1"}
	c3 := &Client{id: "c3", userID: "u2"}

	type op struct {
		kind string // set, del
		user string
		c    *Client
	}
	tests := []struct {
		name   string
		ops    []op
		want   map[string]*Client
		absent []string
	}{
		{
			name: "overwrite",
			ops:  []op{{"set", "u1", c1}, {"set", "u1", c2}},
			want: map[string]*Client{"u1": c2},
		},
		{
			name:   "set then delete",
			ops:    []op{{"set", "u1", c1}, {"set", "u2", c3}, {"del", "u1", nil}},
			want:   map[string]*Client{"u2": c3},
			absent: []string{"u1"},
		},
		{
			name: "delete then set",
			ops:  []op{{"set", "u1", c1}, {"del", "u1", nil}, {"set", "u1", c2}},
			want: map[string]*Client{"u1": c2},
		},
		{
			name:   "delete absent",
			ops:    []op{{"del", "u1", nil}, {"del", "u1", nil}},
			absent: []string{"u1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			for _, o := range tt.ops {
				switch o.kind {
				case "set":
					r.Set(o.user, o.c)
				case "del":
					r.Delete(o.user)
				}
			}
			for user, want := range tt.want {
				if got, ok := r.Get(user); !ok || got != want {
					t.Errorf("Get(%q) = %v, %v; want %v", user, got, ok, want.id)
				}
			}
			for _, user := range tt.absent {
				if _, ok := r.Get(user); ok {
					t.Errorf("Get(%q) present, want absent", user)
				}
			}
			if r.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.want))
			}
		})
	}
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Set("u1", &Client{id: "c1"})

	if !r.Delete("u1") {
		t.Error("first Delete() = false, want true")
	}
	if r.Delete("u1") {
		t.Error("second Delete() = true, want false")
	}
}

func TestRegistry_DeleteIfIgnoresReplacedClient(t *testing.T) {
	r := NewRegistry()
	old := &Client{id: "old"}
	cur := &Client{id: "new"}
	r.Set("u1", old)
	r.Set("u1", cur)

	if r.DeleteIf("u1", old) {
		t.Fatal("DeleteIf(old) = true, want false")
	}
	if got, _ := r.Get("u1"); got != cur {
		t.Fatalf("Get() = %v, want new client", got.id)
	}
	if !r.DeleteIf("u1", cur) {
		t.Fatal("DeleteIf(cur) = false, want true")
	}
}

func TestRegistry_UsersSorted(t *testing.T) {
	r := NewRegistry()
	if got := r.Users(); got == nil || len(got) != 0 {
		t.Fatalf("Users() on empty = %#v, want empty non-nil slice", got)
	}
	for _, u := range []string{"carol", "alice", "bob"} {
		r.Set(u, &Client{id: u})
	}
	want := []string{"alice", "bob", "carol"}
	if got := r.Users(); !reflect.DeepEqual(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}
}
