package doctor

import (
	"context"
	"errors"
	"maps"
	"os"
	"slices"

	"github.com/hay-kot/criterio"
	"github.com/shopspring/decimal"

	"github.com/hay-kot/storefront/internal/core/config"
	"github.com/hay-kot/storefront/internal/printer"
)

// sampleTotal is rendered in the configured currency so the user can see how
// cart totals will look.
var sampleTotal = decimal.RequireFromString("1234.5")

// ConfigCheck reports the settings the storefront client depends on: where
// the backend lives, how prices are shown and where a ban sends the user.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, Item{
			Label:  "Config loaded",
			Status: StatusFail,
			Detail: "configuration not loaded",
		})
		return result
	}

	fieldErrs, err := c.fieldErrors()
	if err != nil {
		result.Items = append(result.Items, Item{Label: "validation", Status: StatusFail, Detail: err.Error()})
		return result
	}

	result.Items = append(result.Items,
		c.fileItem(fieldErrs),
		settingItem("Backend", "api.base_url", c.config.API.BaseURL, fieldErrs),
		settingItem("Currency", "currency", c.currencyDetail(), fieldErrs),
		settingItem("Banned route", "banned_route", c.config.BannedRoute, fieldErrs),
		settingItem("Data directory", "data_dir", c.config.DataDir, fieldErrs),
	)

	for _, field := range slices.Sorted(maps.Keys(fieldErrs)) {
		result.Items = append(result.Items, Item{Label: field, Status: StatusFail, Detail: fieldErrs[field].Error()})
	}

	for _, w := range c.config.Warnings() {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.Items = append(result.Items, Item{Label: label, Status: StatusWarn, Detail: w.Message})
	}

	return result
}

// fieldErrors runs deep validation and indexes the failures by field.
// Entries are removed as items claim them; what is left is reported as is.
func (c *ConfigCheck) fieldErrors() (map[string]error, error) {
	out := map[string]error{}

	err := c.config.ValidateDeep(c.configPath)
	if err == nil {
		return out, nil
	}

	var fes criterio.FieldErrors
	if !errors.As(err, &fes) {
		return nil, err
	}

	for _, fe := range fes {
		field := fe.Field
		if field == "" {
			field = "validation"
		}
		if prev, ok := out[field]; ok {
			out[field] = errors.Join(prev, fe.Err)
			continue
		}
		out[field] = fe.Err
	}
	return out, nil
}

func (c *ConfigCheck) fileItem(fieldErrs map[string]error) Item {
	item := settingItem("Config file", "config_file", c.configPath, fieldErrs)
	if item.Status != StatusPass {
		return item
	}

	if c.configPath == "" {
		item.Detail = "none, using defaults"
	} else if _, err := os.Stat(c.configPath); os.IsNotExist(err) {
		item.Detail = c.configPath + " not found, using defaults"
	}
	return item
}

func (c *ConfigCheck) currencyDetail() string {
	return c.config.Currency + ", totals look like " + printer.Money(sampleTotal, c.config.CurrencyUnit())
}

// settingItem passes with value as detail unless validation flagged field.
func settingItem(label, field, value string, fieldErrs map[string]error) Item {
	if err, ok := fieldErrs[field]; ok {
		delete(fieldErrs, field)
		return Item{Label: label, Status: StatusFail, Detail: err.Error()}
	}
	return Item{Label: label, Status: StatusPass, Detail: value}
}
