package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gistahq/gista/pkg/config"
)

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("returns defaults when no config file exists", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Backend).To(Equal("sqlite"))
		Expect(cfg.Gemini.Model).To(Equal("models/gemini-1.5-flash"))
		Expect(cfg.Scraper.Provider).To(Equal("readable"))
		Expect(cfg.Ingest.PollIntervalMS).To(Equal(2000))
		Expect(cfg.API.Listen).To(Equal(":8090"))
	})

	It("merges file values over defaults", func() {
		content := "[storage]\nbackend = \"postgres\"\npostgres_url = \"postgres://localhost/gista\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Backend).To(Equal("postgres"))
		Expect(cfg.Storage.PostgresURL).To(Equal("postgres://localhost/gista"))
		// Untouched sections keep their defaults.
		Expect(cfg.Gemini.Model).To(Equal("models/gemini-1.5-flash"))
	})

	It("sets and gets values through dotted keys", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("gemini.model", "models/gemini-1.5-pro")).To(Succeed())
		Expect(cfger.SetConfigValue("ingest.extract_images", "true")).To(Succeed())

		model, err := cfger.GetConfigValue("gemini.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(model).To(Equal("models/gemini-1.5-pro"))

		extract, err := cfger.GetConfigValue("ingest.extract_images")
		Expect(err).NotTo(HaveOccurred())
		Expect(extract).To(Equal("true"))
	})

	It("persists set values to the config file", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SetConfigValue("namespace", "team-a")).To(Succeed())

		reopened, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())
		ns, err := reopened.GetConfigValue("namespace")
		Expect(err).NotTo(HaveOccurred())
		Expect(ns).To(Equal("team-a"))
	})

	It("rejects unknown keys", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("nope.nothing", "x")).To(HaveOccurred())
		_, err = cfger.GetConfigValue("nope.nothing")
		Expect(err).To(HaveOccurred())
	})

	It("validates enumerated values", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("storage.backend", "cassandra")).To(HaveOccurred())
		Expect(cfger.SetConfigValue("scraper.provider", "scrapy")).To(HaveOccurred())
	})

	It("parses broker lists from comma-separated values", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfger.SetConfigValue("events.brokers", "k1:9092,k2:9092")).To(Succeed())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Events.Brokers).To(Equal([]string{"k1:9092", "k2:9092"}))
	})

	It("rejects unsupported config versions", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99\n"))
		Expect(err).To(HaveOccurred())
	})

	It("lists every supported key", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(ContainElements("storage.backend", "gemini.model", "events.topic"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
	})
})

var _ = Describe("InitViper", func() {
	It("applies defaults and env overrides", func() {
		dir := GinkgoT().TempDir()
		GinkgoT().Setenv("GISTA_GEMINI_MODEL", "models/gemini-2.0-flash")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("storage.backend")).To(Equal("sqlite"))
		Expect(v.GetString("gemini.model")).To(Equal("models/gemini-2.0-flash"))
	})

	It("reads config.toml from the resolved directory", func() {
		dir := GinkgoT().TempDir()
		content := "[api]\nlisten = \":9999\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("api.listen")).To(Equal(":9999"))
	})
})
