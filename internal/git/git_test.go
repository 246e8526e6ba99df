package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/src/Services/Ops.cs b/src/Services/Ops.cs
index 3b18e51..a9c1d2f 100644
--- a/src/Services/Ops.cs
+++ b/src/Services/Ops.cs
@@ -10,0 +11,3 @@ public static class Ops
+        /// <summary>New.</summary>
+        [ODataFunction]
+        public static string New(Content content) => "";
@@ -40 +43 @@ public static class Ops
-        return 1;
+        return 2;
@@ -50,2 +52,0 @@ public static class Ops
-        // gone
-        // gone
diff --git a/src/Old.cs b/src/Old.cs
deleted file mode 100644
index 1111111..0000000
--- a/src/Old.cs
+++ /dev/null
@@ -1,2 +0,0 @@
-namespace Old;
-class X {}
`

func TestParseDiff(t *testing.T) {
	files, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "src/Services/Ops.cs", files[0].Path)
	assert.Equal(t, []int{11, 12, 13, 43}, files[0].ChangedLines)
	assert.False(t, files[0].Deleted)

	assert.Equal(t, "src/Old.cs", files[1].Path)
	assert.Empty(t, files[1].ChangedLines)
	assert.True(t, files[1].Deleted)
}

func TestParseDiff_Empty(t *testing.T) {
	files, err := parseDiff(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestTopLevel(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	require.NoError(t, exec.Command("git", "init", "-q", dir).Run())

	sub := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	top, err := TopLevel(context.Background(), sub)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(top)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTopLevel_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	_, err := TopLevel(context.Background(), t.TempDir())
	assert.Error(t, err)
}
