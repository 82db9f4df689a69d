package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/dotdir"
)

// chdirTo changes into dir until the test ends.
func chdirTo(dir string) {
	orig, err := os.Getwd()
	Expect(err).NotTo(HaveOccurred())
	Expect(os.Chdir(dir)).To(Succeed())
	DeferCleanup(func() {
		Expect(os.Chdir(orig)).To(Succeed())
	})
}

// resolvedTempDir returns a temp dir with symlinks resolved so paths match
// filepath.Abs results (e.g. on macOS /var -> /private/var).
func resolvedTempDir() string {
	dir, err := filepath.EvalSymlinks(GinkgoT().TempDir())
	Expect(err).NotTo(HaveOccurred())
	return dir
}

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		tmpDir = resolvedTempDir()
		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("uses and creates the override directory", func() {
			override := filepath.Join(tmpDir, "custom")

			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))
			Expect(override).To(BeADirectory())
		})

		It("prefers the override over a local .devassist dir", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".devassist"), 0o755)).To(Succeed())
			chdirTo(tmpDir)

			override := filepath.Join(tmpDir, "other")
			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))
		})

		It("uses a local .devassist dir when one exists", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".devassist"), 0o755)).To(Succeed())
			chdirTo(tmpDir)

			target, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(filepath.Join(tmpDir, ".devassist")))
		})

		It("falls back to creating ~/.devassist", func() {
			home := resolvedTempDir()
			GinkgoT().Setenv("HOME", home)
			chdirTo(tmpDir)

			target, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(filepath.Join(home, ".devassist")))
			Expect(target).To(BeADirectory())
		})
	})

	Describe("LogPath", func() {
		It("places the log inside the target directory", func() {
			path, err := m.LogPath(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(tmpDir, "devassist.log")))
		})
	})
})
