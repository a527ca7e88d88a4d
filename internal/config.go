package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	GitHub   GitHubConfig      `yaml:"github"`
	Admin    AdminConfig       `yaml:"admin"`
	Site     SiteConfig        `yaml:"site"`
	Workflow WorkflowConfig    `yaml:"workflow"`
	Mail     MailConfig        `yaml:"mail"`
	Webhook  WebhookConfig     `yaml:"webhook"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.GitHub.Validate(); err != nil {
		return err
	}
	if err := c.Admin.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Workflow.Validate(); err != nil {
		return err
	}
	return c.Mail.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GitHubConfig holds the content store repository settings.
type GitHubConfig struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
}

// Validate validates the content store configuration.
func (c *GitHubConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.Repo, validation.Required),
	); err != nil {
		return err
	}
	if !strings.Contains(c.Repo, "/") {
		return fmt.Errorf("github: repo must be owner/name, got %q", c.Repo)
	}
	return nil
}

// AdminConfig holds the admin API secret.
type AdminConfig struct {
	Secret string `yaml:"secret"`
}

// Validate validates the admin configuration.
func (c *AdminConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
	)
}

// SiteConfig describes the published site the backend administers.
type SiteConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Name, validation.Required),
	); err != nil {
		return err
	}
	if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
		return fmt.Errorf("site: url must be absolute, got %q", c.URL)
	}
	return nil
}

// WorkflowConfig names the CI workflow definitions the backend dispatches.
type WorkflowConfig struct {
	File     string `yaml:"file"`
	ScanFile string `yaml:"scan_file"`
}

// Validate validates the workflow configuration.
func (c *WorkflowConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required),
	)
}

// MailConfig holds the mailing list and transactional mail providers.
// All fields are optional: the public form flows degrade when a provider
// is unconfigured.
type MailConfig struct {
	MailerLiteKey   string `yaml:"mailerlite_key"`
	MailerLiteGroup string `yaml:"mailerlite_group"`
	ResendKey       string `yaml:"resend_key"`
	AdminEmail      string `yaml:"admin_email"`
	FromDomain      string `yaml:"from_domain"`
}

// Validate validates the mail configuration.
func (c *MailConfig) Validate() error {
	if c.AdminEmail != "" && !strings.Contains(c.AdminEmail, "@") {
		return fmt.Errorf("mail: admin_email %q is not an address", c.AdminEmail)
	}
	return nil
}

// WebhookConfig holds the social media automation endpoint.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		GitHub: GitHubConfig{
			APIURL: "https://api.github.com",
			Branch: "main",
		},
		Workflow: WorkflowConfig{
			File:     "generate-article.yml",
			ScanFile: "scan-products.yml",
		},
		Mail: MailConfig{
			FromDomain: "littlesmartgenius.com",
		},
	}
}
