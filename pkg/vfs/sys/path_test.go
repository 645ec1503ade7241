package sys_test

import (
	"errors"
	"testing"

	"github.com/arthur-debert/vfs/pkg/vfs/sys"
)

func TestClean(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{"root", "/", "/", nil},
		{"duplicate separators", "//foo///bar", "/foo/bar", nil},
		{"dot elements", "/foo/./bar/.", "/foo/bar", nil},
		{"parent elements", "/foo/bar/../baz", "/foo/baz", nil},
		{"parent to root", "/foo/..", "/", nil},
		{"relative kept", "foo/../..", "..", nil},
		{"relative dot", "./", ".", nil},
		{"above root", "/..", "", sys.ErrParentNotFound},
		{"empty", "", "", sys.ErrEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sys.Clean(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestAbs(t *testing.T) {
	t.Setenv("VFS_SYS_TEST", "bar")
	t.Setenv("HOME", "/home/tester")

	testCases := []struct {
		name     string
		input    string
		cwd      string
		expected string
		wantErr  error
	}{
		{"absolute unchanged", "/foo", "/cwd", "/foo", nil},
		{"relative joined to cwd", "foo/bar", "/cwd", "/cwd/foo/bar", nil},
		{"relative with parent", "../foo", "/cwd/dir", "/cwd/foo", nil},
		{"empty cwd means root", "foo", "", "/foo", nil},
		{"env var", "/foo/$VFS_SYS_TEST", "/", "/foo/bar", nil},
		{"braced env var", "/foo/${VFS_SYS_TEST}/baz", "/", "/foo/bar/baz", nil},
		{"home", "~", "/cwd", "/home/tester", nil},
		{"home child", "~/foo", "/cwd", "/home/tester/foo", nil},
		{"tilde user unsupported", "~other/foo", "/", "", sys.ErrInvalidExpansion},
		{"tilde mid path", "/foo/~/bar", "/", "", sys.ErrInvalidExpansion},
		{"above root", "../..", "/cwd", "", sys.ErrParentNotFound},
		{"empty", "", "/cwd", "", sys.ErrEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sys.Abs(tc.input, tc.cwd)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	testCases := []struct {
		target, base, expected string
	}{
		{"/file", "/", "file"},
		{"/file", "/dir", "../file"},
		{"/dir/file", "/dir", "file"},
		{"/a/b/c", "/a/x/y", "../../b/c"},
		{"/dir", "/dir", "."},
		{"/", "/dir/sub", "../.."},
	}

	for _, tc := range testCases {
		t.Run(tc.target+"_from_"+tc.base, func(t *testing.T) {
			if got := sys.Relative(tc.target, tc.base); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestMash(t *testing.T) {
	if got := sys.Mash("/foo", "/bar"); got != "/foo/bar" {
		t.Errorf("Expected /foo/bar, got %q", got)
	}
	if got := sys.Mash("/", "bar/baz"); got != "/bar/baz" {
		t.Errorf("Expected /bar/baz, got %q", got)
	}
}

func TestComponentsAndPrefix(t *testing.T) {
	if got := sys.Components("/"); len(got) != 0 {
		t.Errorf("Expected no components for root, got %v", got)
	}
	got := sys.Components("/a/b")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}

	if !sys.HasPrefix("/a/b", "/a") {
		t.Error("Expected /a/b to be beneath /a")
	}
	if sys.HasPrefix("/ab", "/a") {
		t.Error("Expected /ab not to be beneath /a")
	}
	if !sys.HasPrefix("/a", "/") {
		t.Error("Expected every path to be beneath the root")
	}
}
