package initcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/devassist/cmd/devassist/init"
	"github.com/papercomputeco/devassist/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has --preset and --force flags", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Flags().Lookup("preset")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("force")).NotTo(BeNil())
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	readConfig := func() *config.Config {
		data, err := os.ReadFile(filepath.Join(tmpDir, ".devassist", "config.toml"))
		Expect(err).NotTo(HaveOccurred())
		cfg := &config.Config{}
		Expect(toml.Unmarshal(data, cfg)).To(Succeed())
		return cfg
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)
	})

	It("creates the .devassist directory", func() {
		Expect(run()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Initialized .devassist directory"))

		info, err := os.Stat(filepath.Join(tmpDir, ".devassist"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o700)))

		_, err = os.Stat(filepath.Join(tmpDir, ".devassist", "config.toml"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("is idempotent", func() {
		Expect(run()).To(Succeed())
		Expect(run()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Already initialized"))
	})

	It("writes the sqlite preset", func() {
		Expect(run("--preset", "sqlite")).To(Succeed())
		cfg := readConfig()
		Expect(cfg.Storage.Driver).To(Equal(config.StorageSQLite))
		Expect(cfg.EventStream.Provider).To(Equal(config.EventStreamNop))
	})

	It("writes the kafka preset", func() {
		Expect(run("--preset", "kafka")).To(Succeed())
		cfg := readConfig()
		Expect(cfg.EventStream.Provider).To(Equal(config.EventStreamKafka))
		Expect(cfg.EventStream.Brokers).To(Equal("localhost:9092"))
	})

	It("rejects unknown presets without creating anything", func() {
		Expect(run("--preset", "cloud")).To(MatchError(ContainSubstring("unknown preset")))
		_, err := os.Stat(filepath.Join(tmpDir, ".devassist"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("refuses to overwrite a config without --force", func() {
		Expect(run("--preset", "kafka")).To(Succeed())
		Expect(run("--preset", "local")).To(MatchError(ContainSubstring("--force")))
		Expect(readConfig().EventStream.Provider).To(Equal(config.EventStreamKafka))

		Expect(run("--preset", "local", "--force")).To(Succeed())
		Expect(readConfig().EventStream.Provider).To(Equal(config.EventStreamNop))
	})
})
