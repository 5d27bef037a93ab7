package models

import (
	"encoding/json"
	"testing"
)

func TestMatch_IsFileMatch(t *testing.T) {
	if !(Match{Path: "/a.htm"}).IsFileMatch() {
		t.Error("path-only match should be a file match")
	}
	if (Match{Path: "/a.htm", Fragment: "x", Line: 3}).IsFileMatch() {
		t.Error("located match should not be a file match")
	}
}

func TestMatch_JSONOmitsEmptyLocation(t *testing.T) {
	b, err := json.Marshal(Match{Path: "/a.htm"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"path":"/a.htm"}` {
		t.Errorf("got %s", b)
	}
}
