package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		dialect Dialect
		query   string
		want    string
	}{
		{SQLite, "SELECT 1 FROM groups WHERE id = ?", "SELECT 1 FROM groups WHERE id = ?"},
		{Postgres, "SELECT 1 FROM groups WHERE id = ?", "SELECT 1 FROM groups WHERE id = $1"},
		{Postgres, "UPDATE splits SET deleted = ? WHERE expense_id = ? AND deleted = ?",
			"UPDATE splits SET deleted = $1 WHERE expense_id = $2 AND deleted = $3"},
		{Postgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String()+"/"+tt.query, func(t *testing.T) {
			l := &ledger{dialect: tt.dialect}
			if got := l.rebind(tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"carol", "alice", "", "carol", "bob"})
	want := []string{"alice", "bob", "carol"}
	if len(got) != len(want) {
		t.Fatalf("uniqueSorted() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("uniqueSorted()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
