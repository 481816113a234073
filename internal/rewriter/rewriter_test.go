package rewriter

import (
	"strings"
	"testing"
)

func defaultRule() Rule {
	return Rule{
		Token:       "println(",
		Replacement: `Logger.d("{tag}", `,
		Import:      "import com.mediasfu.sdk.util.Logger",
		Extension:   ".kt",
		TagMaxLen:   20,
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"short", "Foo.kt", "Foo"},
		{"exactly twenty", "ABCDEFGHIJKLMNOPQRST.kt", "ABCDEFGHIJKLMNOPQRST"},
		{"truncated", "MediaSfuRoomClientController.kt", "MediaSfuRoomClientCo"},
		{"with directory", "src/a/UserSessionManager.kt", "UserSessionManager"},
		{"extension kept mid-name", "a.kt.helper.kt", "a.kt.helper"},
		{"multibyte", "ÄÖÜäöüßÄÖÜäöüßÄÖÜäöüß.kt", "ÄÖÜäöüßÄÖÜäöüßÄÖÜäöü"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tag(tt.filename, ".kt", 20); got != tt.want {
				t.Errorf("Tag(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestInsertImport(t *testing.T) {
	r := defaultRule()
	tests := []struct {
		name      string
		content   string
		want      string
		wantAdded bool
	}{
		{
			name:      "after package line",
			content:   "package com.example.app\n\nfun f() {}\n",
			want:      "package com.example.app\nimport com.mediasfu.sdk.util.Logger\n\nfun f() {}\n",
			wantAdded: true,
		},
		{
			name:      "already present",
			content:   "package a\nimport com.mediasfu.sdk.util.Logger\n",
			want:      "package a\nimport com.mediasfu.sdk.util.Logger\n",
			wantAdded: false,
		},
		{
			name:      "no package line",
			content:   "fun f() { println(1) }\n",
			want:      "fun f() { println(1) }\n",
			wantAdded: false,
		},
		{
			name:      "only first package line",
			content:   "// header\npackage a.b\npackage c.d\n",
			want:      "// header\npackage a.b\nimport com.mediasfu.sdk.util.Logger\npackage c.d\n",
			wantAdded: true,
		},
		{
			name:      "indented package is not a declaration",
			content:   "  package a\n",
			want:      "  package a\n",
			wantAdded: false,
		},
		{
			name:      "crlf line endings",
			content:   "package a\r\nfun f() {}\r\n",
			want:      "package a\r\nimport com.mediasfu.sdk.util.Logger\r\nfun f() {}\r\n",
			wantAdded: true,
		},
		{
			name:      "package line without terminator",
			content:   "package a",
			want:      "package a\nimport com.mediasfu.sdk.util.Logger",
			wantAdded: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, added := r.InsertImport(tt.content)
			if got != tt.want {
				t.Errorf("InsertImport() = %q, want %q", got, tt.want)
			}
			if added != tt.wantAdded {
				t.Errorf("InsertImport() added = %v, want %v", added, tt.wantAdded)
			}
		})
	}
}

func TestRewriteCalls(t *testing.T) {
	r := defaultRule()
	content := `println("a"); println("b")
val s = "println(x)" // println(y)
`
	got, n := r.RewriteCalls(content, "Tag")
	want := `Logger.d("Tag", "a"); Logger.d("Tag", "b")
val s = "Logger.d("Tag", x)" // Logger.d("Tag", y)
`
	if got != want {
		t.Errorf("RewriteCalls() =\n%s\nwant\n%s", got, want)
	}
	if n != 4 {
		t.Errorf("RewriteCalls() count = %d, want 4", n)
	}
}

func TestApplyScenario(t *testing.T) {
	r := defaultRule()
	content := "package com.example.app\n\nfun f() { println(\"hi\") }"
	rec := r.Apply("UserSessionManager.kt", content)

	want := "package com.example.app\nimport com.mediasfu.sdk.util.Logger\n\nfun f() { Logger.d(\"UserSessionManager\", \"hi\") }"
	if rec.Modified != want {
		t.Fatalf("Apply() =\n%q\nwant\n%q", rec.Modified, want)
	}
	if rec.Count != 1 || !rec.ImportAdded || !rec.Changed() {
		t.Errorf("Apply() record = %+v", rec)
	}
}

func TestApplyWithoutPackageLine(t *testing.T) {
	r := defaultRule()
	rec := r.Apply("Script.kt", "println(1)\n")
	if rec.Modified != "Logger.d(\"Script\", 1)\n" {
		t.Errorf("Apply() = %q", rec.Modified)
	}
	if rec.ImportAdded {
		t.Error("expected no import without a package line")
	}
}

func TestApplyNoMatchIsUntouched(t *testing.T) {
	r := defaultRule()
	content := "package a\n\nfun f() = print(1)\n"
	rec := r.Apply("A.kt", content)
	if rec.Changed() || rec.Modified != content || rec.Count != 0 {
		t.Errorf("non-matching file changed: %+v", rec)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	r := defaultRule()
	first := r.Apply("A.kt", "package a\nfun f() { println(1); println(2) }\n")
	second := r.Apply("A.kt", first.Modified)
	if second.Changed() {
		t.Errorf("second pass changed content:\n%s", second.Modified)
	}
	if strings.Count(second.Modified, r.Import) != 1 {
		t.Errorf("expected exactly one import, got:\n%s", second.Modified)
	}
}

func TestValidate(t *testing.T) {
	if err := defaultRule().Validate(); err != nil {
		t.Fatalf("default rule invalid: %v", err)
	}
	bad := defaultRule()
	bad.TagMaxLen = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero tag length")
	}
	bad = defaultRule()
	bad.Token = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestName(t *testing.T) {
	if got := defaultRule().Name(); got != "println" {
		t.Errorf("Name() = %q, want println", got)
	}
}
