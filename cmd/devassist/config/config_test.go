package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/devassist/cmd/devassist/cmdutil"
	configcmder "github.com/papercomputeco/devassist/cmd/devassist/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has its subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list", "push", "remote"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmdutil.AddGlobalFlags(cmd)
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--config-dir", dir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("set subcommand", func() {
		It("writes config.toml", func() {
			Expect(run("set", "storage.driver", "sqlite")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("storage.driver"))

			data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`driver = "sqlite"`))
		})

		It("prints the normalized value", func() {
			Expect(run("set", "client.base_url", "http://example.com/")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("http://example.com"))
			Expect(out.String()).NotTo(ContainSubstring("http://example.com/"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects invalid values", func() {
			Expect(run("set", "worker.num_workers", "lots")).NotTo(Succeed())
			Expect(run("set", "storage.driver", "mongo")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "storage.driver")).NotTo(Succeed())
			Expect(run("set")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "chat.history_window", "10")).To(Succeed())
			Expect(run("get", "chat.history_window")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("10"))
			Expect(out.String()).To(ContainSubstring("Config file:"))
		})

		It("reports defaults when no config file exists", func() {
			Expect(run("get", "chat.history_window")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Using defaults"))
			Expect(out.String()).To(ContainSubstring("6"))
		})

		It("shows unset values", func() {
			Expect(run("get", "storage.postgres_dsn")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No config file found"))
			Expect(out.String()).To(ContainSubstring(`client.base_url         = "http://localhost:8000"`))
			Expect(out.String()).To(ContainSubstring("storage.postgres_dsn    = <not set>"))
			Expect(out.String()).To(ContainSubstring(`api.disable_mcp         = "false"`))
		})

		It("names the config file once written", func() {
			Expect(run("set", "chat.markdown", "true")).To(Succeed())
			Expect(run("list")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Using config file: " + filepath.Join(dir, "config.toml")))
			Expect(out.String()).To(ContainSubstring(`chat.markdown           = "true"`))
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})
})
