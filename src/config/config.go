package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Config 结构体定义了看板服务的配置结构
type Config struct {
	Server struct {
		Address         string   `json:"address"`          // HTTP 监听地址
		ShutdownTimeout Duration `json:"shutdown_timeout"` // 优雅退出的等待时间
	} `json:"server"`

	Dataset struct {
		Path      string `json:"path"`       // 订单数据文件(csv/xlsx)
		SheetName string `json:"sheet_name"` // xlsx 数据所在工作表
		Charset   string `json:"charset"`    // 源文件编码, 为空时按 utf-8 处理
		Watch     bool   `json:"watch"`      // 文件变化时自动重新加载
	} `json:"dataset"`

	LogName        string   `json:"log_name"`
	LogMaxSize     string   `json:"log_max_size"` // 形如 "10 * 1024 * 1024"
	LogLevel       string   `json:"log_level"`
	RotateInterval Duration `json:"rotate_interval"` // 日志轮转检查间隔
	LogoPath       string   `json:"logo_path"`       // 为空时使用内置绘制的 logo
}

// DataConfig 保存分类标签与图表注释, 均可选
type DataConfig struct {
	WeatherLabels map[string]string `json:"weather_labels"`
	SeasonLabels  map[string]string `json:"season_labels"`
	Annotations   map[string]string `json:"annotations"`
}

var mu sync.RWMutex

// LoadConfig 并行读取 config.json 与 dataconfig.json, 填充默认值并应用环境变量覆盖
func LoadConfig(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	cfg, dcfg, err := loadConfigs(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		return nil, nil, err
	}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, dcfg, nil
}

// Default 返回不依赖配置文件的默认配置, 环境变量仍然生效
func Default() (*Config, *DataConfig) {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, &DataConfig{}
}

func loadConfigs(jsonFolder, jsonFile, dataJsonFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	dataConfigFile := filepath.Join(jsonFolder, dataJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	dataConfigData, err := readFile(dataConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read data config: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	return waitForResults(cfgChan, dcfgChan, errChan)
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("parse Config: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	var dcfg DataConfig
	if err := json.Unmarshal(data, &dcfg); err != nil {
		errChan <- fmt.Errorf("parse DataConfig: %w", err)
		return
	}
	resultChan <- &dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg    *Config
		dcfg   *DataConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || dcfg == nil {
		return nil, nil, fmt.Errorf("configuration partially loaded")
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "multiple errors loading configuration:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if cfg.Dataset.Path == "" {
		cfg.Dataset.Path = "dataset.csv"
	}
	if cfg.Dataset.SheetName == "" {
		cfg.Dataset.SheetName = "Sheet1"
	}
	if cfg.LogName == "" {
		cfg.LogName = "app.log"
	}
	if cfg.LogMaxSize == "" {
		cfg.LogMaxSize = "10 * 1024 * 1024"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RotateInterval == 0 {
		cfg.RotateInterval = Duration(time.Minute)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BIKESHARE_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("BIKESHARE_DATASET"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("BIKESHARE_DATASET_SHEET"); v != "" {
		cfg.Dataset.SheetName = v
	}
	if v := os.Getenv("BIKESHARE_DATASET_CHARSET"); v != "" {
		cfg.Dataset.Charset = v
	}
	if v := os.Getenv("BIKESHARE_DATASET_WATCH"); v != "" {
		if watch, err := strconv.ParseBool(v); err == nil {
			cfg.Dataset.Watch = watch
		}
	}
	if v := os.Getenv("BIKESHARE_LOG_NAME"); v != "" {
		cfg.LogName = v
	}
	if v := os.Getenv("BIKESHARE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BIKESHARE_LOG_MAX_SIZE"); v != "" {
		cfg.LogMaxSize = v
	}
	if v := os.Getenv("BIKESHARE_LOGO"); v != "" {
		cfg.LogoPath = v
	}
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
// 用于从JSON字符串解析Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
// 用于将Duration序列化为JSON字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std 返回标准库的 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// WeatherLabel 返回天气分类的展示名称, 未配置时返回空串
func (dc *DataConfig) WeatherLabel(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.WeatherLabels[strconv.Itoa(code)]
}

// SeasonLabel 返回季节分类的展示名称, 未配置时返回空串
func (dc *DataConfig) SeasonLabel(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.SeasonLabels[strconv.Itoa(code)]
}

func (dc *DataConfig) GetAnnotation(panel string) string {
	mu.RLock()
	defer mu.RUnlock()
	return dc.Annotations[panel]
}

func (dc *DataConfig) SetAnnotation(panel, text string) {
	mu.Lock()
	defer mu.Unlock()
	if dc.Annotations == nil {
		dc.Annotations = make(map[string]string)
	}
	dc.Annotations[panel] = text
}
