package pin

import (
	"errors"
	"testing"
)

func TestBoardTable(t *testing.T) {
	for _, board := range Boards() {
		t.Run(board, func(t *testing.T) {
			tbl, err := BoardTable(board)
			if err != nil {
				t.Fatalf("BoardTable(%q) error = %v", board, err)
			}
			if len(tbl) == 0 {
				t.Fatal("empty table")
			}
		})
	}

	if _, err := BoardTable("uno"); !errors.Is(err, ErrUnknownBoard) {
		t.Errorf("BoardTable(uno) error = %v, want ErrUnknownBoard", err)
	}
}

func TestNanoESP32Aliases(t *testing.T) {
	tbl, _ := BoardTable(BoardNanoESP32)

	d11, _ := tbl.Lookup("D11")
	mosi, _ := tbl.Lookup("MOSI")
	if d11 != mosi {
		t.Errorf("D11 = %d, MOSI = %d, want same line", d11, mosi)
	}
	if _, ok := tbl.Lookup("D13"); ok {
		t.Error("D13 is reserved and should not resolve")
	}
}

func TestTableCopies(t *testing.T) {
	a, _ := BoardTable(BoardNanoESP32)
	a["D2"] = 99

	b, _ := BoardTable(BoardNanoESP32)
	if b["D2"] == 99 {
		t.Error("BoardTable returned shared storage")
	}

	c := b.With(map[string]int{"RELAY": 5})
	if _, ok := b.Lookup("RELAY"); ok {
		t.Error("With mutated the receiver")
	}
	if line, ok := c.Lookup("RELAY"); !ok || line != 5 {
		t.Errorf("RELAY = %d, %v; want 5, true", line, ok)
	}
}

func TestTableNamesSorted(t *testing.T) {
	tbl := Table{"b": 1, "a": 2, "c": 3}
	names := tbl.Names()
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}
