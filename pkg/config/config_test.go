package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "school", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Reports.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, "config/grade_values.yaml", cfg.Grading.SeedFile)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REPORT_CACHE_TTL", "bogus")
	v.Set("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	v.Set("ENABLE_REPORT_CACHE", true)

	cfg := fromViper(v)
	assert.Equal(t, 5*time.Minute, cfg.Reports.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Reports.CacheEnabled)
}
