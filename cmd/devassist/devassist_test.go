package devassistcmder_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	devassistcmder "github.com/papercomputeco/devassist/cmd/devassist"
	"github.com/papercomputeco/devassist/pkg/devserver"
	testutils "github.com/papercomputeco/devassist/pkg/utils/test"
)

var _ = Describe("NewDevassistCmd", func() {
	It("wires every command", func() {
		cmd := devassistcmder.NewDevassistCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"init", "login", "logout", "whoami", "passwd", "chat", "ask",
			"sessions", "modules", "turns", "config", "serve", "version",
		))
	})

	It("has the global flags", func() {
		cmd := devassistcmder.NewDevassistCmd()
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
	})
})

var _ = Describe("devassist", func() {
	var (
		dir     string
		backend *testutils.Backend
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		backend = testutils.NewBackend(devserver.Config{})
		DeferCleanup(backend.Close)
	})

	run := func(stdin string, args ...string) (string, error) {
		return testutils.ExecuteCommand(devassistcmder.NewDevassistCmd(), stdin, append(args, "--config-dir", dir)...)
	}

	It("logs in, asks, records and logs out", func() {
		db := filepath.Join(dir, "turns.db")

		_, err := run("", "config", "set", "client.base_url", backend.URL())
		Expect(err).NotTo(HaveOccurred())
		_, err = run("", "config", "set", "storage.driver", "sqlite")
		Expect(err).NotTo(HaveOccurred())
		_, err = run("", "config", "set", "storage.sqlite_path", db)
		Expect(err).NotTo(HaveOccurred())

		_, err = run("dev\n", "login", "-u", "dev", "--password-stdin")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("", "whoami")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("dev"))

		out, err = run("", "ask", "what", "is", "new?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`You asked: "what is new?".`))

		out, err = run("", "turns", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("what is new?"))

		_, err = run("", "logout")
		Expect(err).NotTo(HaveOccurred())

		_, err = run("", "ask", "again")
		Expect(err).To(MatchError(ContainSubstring("not logged in")))
	})

	It("prints the version", func() {
		out, err := run("", "version", "--short")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(BeEmpty())
	})
})
