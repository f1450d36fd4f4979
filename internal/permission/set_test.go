package permission

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []func() Set{
		func() Set { return Set{} }, // all-NONE
		func() Set {
			var s Set
			for _, f := range Features {
				s.Set(f, LevelFull)
			}
			return s
		},
		func() Set {
			var s Set
			s.Set(FeatureConsole, LevelFull)
			s.Set(FeatureBackups, LevelRead)
			return s
		},
		func() Set {
			var s Set
			s.Set(FeatureSettings, LevelRead)
			return s
		},
	}
	for i, mk := range cases {
		want := mk()
		got := Decode(want.Encode())
		if got != want {
			t.Fatalf("case %d: decode(encode) mismatch: %q -> %+v", i, want.Encode(), got)
		}
	}
}

func TestDecodeSkipsUnknownTokens(t *testing.T) {
	s := Decode("console:2,teleporters:1,not-a-token,backups:9,players:full,files:,console")
	if got := s.Get(FeatureConsole); got != LevelFull {
		t.Fatalf("console = %v, want full", got)
	}
	for _, f := range []Feature{FeatureFileManager, FeatureBackups, FeaturePlayers} {
		if got := s.Get(f); got != LevelNone {
			t.Fatalf("%s = %v, want none", f, got)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	if !LevelFull.Allows(LevelRead) {
		t.Fatal("FULL must imply READ")
	}
	if LevelRead.Allows(LevelFull) {
		t.Fatal("READ must not imply FULL")
	}
	if !LevelNone.Allows(LevelNone) {
		t.Fatal("NONE clears a NONE requirement")
	}
}

func TestAccessible(t *testing.T) {
	var s Set
	s.Set(FeatureConsole, LevelRead)
	s.Set(FeatureBackups, LevelFull)
	got := s.Accessible([]Feature{FeatureFileManager, FeatureConsole, FeatureBackups})
	if len(got) != 2 || got[0] != FeatureConsole || got[1] != FeatureBackups {
		t.Fatalf("accessible = %v", got)
	}
}
