package modulescmder_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	modulescmder "github.com/papercomputeco/devassist/cmd/devassist/modules"
	"github.com/papercomputeco/devassist/pkg/client"
	"github.com/papercomputeco/devassist/pkg/devserver"
	testutils "github.com/papercomputeco/devassist/pkg/utils/test"
)

var _ = Describe("modules", func() {
	var (
		dir     string
		backend *testutils.Backend
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		backend = testutils.NewBackend(devserver.Config{})
		DeferCleanup(backend.Close)
		_, err := backend.SaveLogin(dir, "dev")
		Expect(err).NotTo(HaveOccurred())
	})

	run := func(args ...string) (string, error) {
		cmd := modulescmder.NewModulesCmd()
		cmdutil.AddGlobalFlags(cmd)
		return testutils.ExecuteCommand(cmd, "", append(args, "--config-dir", dir, "--base-url", backend.URL())...)
	}

	It("lists every module", func() {
		out, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Onboarding"))
		Expect(out).To(ContainSubstring("Payments API"))
		Expect(out).To(ContainSubstring("(Platform)"))
		Expect(out).To(ContainSubstring("Payments service reference"))
	})

	It("filters by team", func() {
		out, err := run("--team", "2")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Payments API"))
		Expect(out).NotTo(ContainSubstring("Onboarding"))
	})

	It("reports an empty team", func() {
		out, err := run("--team", "9")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No modules found."))
	})

	It("rejects arguments", func() {
		_, err := run("extra")
		Expect(err).To(HaveOccurred())
	})

	Describe("docs", func() {
		It("lists documents under their module", func() {
			out, err := run("docs")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Onboarding"))
			Expect(out).To(ContainSubstring("Laptop setup"))
			Expect(out).To(ContainSubstring("uploads/2/refunds.md"))
			Expect(strings.Index(out, "Code review guide")).To(BeNumerically("<", strings.Index(out, "Laptop setup")))
		})

		It("filters by module", func() {
			out, err := run("docs", "--module", "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Refunds"))
			Expect(out).NotTo(ContainSubstring("Laptop setup"))
		})

		It("reports an empty module", func() {
			out, err := run("docs", "--module", "9")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("No documents found."))
		})
	})

	Describe("stats", func() {
		It("shows document and embedding counts", func() {
			out, err := run("stats", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(MatchRegexp(`(?m)Documents:\s+2$`))
			Expect(out).To(MatchRegexp(`(?m)Embeddings:\s+42$`))
		})

		It("reports unknown modules", func() {
			_, err := run("stats", "9")
			Expect(errors.Is(err, client.ErrNotFound)).To(BeTrue())
		})

		It("rejects a non-numeric id", func() {
			_, err := run("stats", "abc")
			Expect(err).To(MatchError(`invalid module id "abc"`))
		})
	})

	It("requires a login to browse documents", func() {
		cmd := modulescmder.NewModulesCmd()
		cmdutil.AddGlobalFlags(cmd)
		_, err := testutils.ExecuteCommand(cmd, "", "docs", "--config-dir", GinkgoT().TempDir(), "--base-url", backend.URL())
		Expect(err).To(MatchError(cmdutil.ErrNotLoggedIn))
	})
})
