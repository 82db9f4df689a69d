package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/pkg/dotdir"
)

var _ = Describe("State", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		tmpDir = resolvedTempDir()
		m = dotdir.NewManager()
	})

	It("returns nil when logged out", func() {
		state, err := m.LoadState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
		Expect(state.LoggedIn()).To(BeFalse())
	})

	It("saves and loads state", func() {
		want := &dotdir.State{
			BaseURL:   "http://localhost:8000",
			Username:  "dev",
			Token:     "secret",
			Role:      1,
			SessionID: 4,
		}
		Expect(m.SaveState(want, tmpDir)).To(Succeed())

		got, err := m.LoadState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(got.LoggedIn()).To(BeTrue())
	})

	It("writes the state file readable by the owner only", func() {
		path := filepath.Join(tmpDir, "state.json")
		Expect(os.WriteFile(path, []byte("{}"), 0o644)).To(Succeed())

		Expect(m.SaveState(&dotdir.State{Token: "t"}, tmpDir)).To(Succeed())

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("rejects nil state", func() {
		Expect(m.SaveState(nil, tmpDir)).To(MatchError("cannot save nil state"))
	})

	It("reports corrupt state files", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "state.json"), []byte("{"), 0o600)).To(Succeed())

		_, err := m.LoadState(tmpDir)
		Expect(err).To(MatchError(ContainSubstring("parsing state")))
	})

	It("clears state idempotently", func() {
		Expect(m.SaveState(&dotdir.State{Token: "t"}, tmpDir)).To(Succeed())
		Expect(m.ClearState(tmpDir)).To(Succeed())
		Expect(m.ClearState(tmpDir)).To(Succeed())

		state, err := m.LoadState(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})
})
