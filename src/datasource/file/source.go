package file

import (
	"BikeSharing/src/metrics"
	"BikeSharing/src/processor"
	"BikeSharing/src/storage"
	"fmt"
	"sync/atomic"
)

// Source 持有当前可用的 Dataset, 重新加载失败时保留上一份数据
type Source struct {
	path    string
	opts    Options
	logger  *storage.Logger
	current atomic.Pointer[processor.Dataset]
	lastErr atomic.Pointer[error]
	reloads atomic.Int64
}

func NewSource(path string, opts Options, logger *storage.Logger) *Source {
	return &Source{path: path, opts: opts, logger: logger}
}

// Path 数据文件路径
func (s *Source) Path() string {
	return s.path
}

// Reload 重新读取数据文件
func (s *Source) Reload() error {
	ds, err := Load(s.path, s.opts)
	if err != nil {
		metrics.ObserveReload(0, err)
		s.lastErr.Store(&err)
		if s.logger != nil {
			s.logger.Zerolog().Error().Err(err).Str("path", s.path).Msg("dataset load failed")
		}
		return err
	}

	s.current.Store(ds)
	s.lastErr.Store(nil)
	s.reloads.Add(1)
	metrics.ObserveReload(ds.Len(), nil)
	if s.logger != nil {
		first, last := ds.Bounds()
		s.logger.Zerolog().Info().
			Str("path", s.path).
			Int("rows", ds.Len()).
			Time("first", first).
			Time("last", last).
			Msg("dataset loaded")
	}
	return nil
}

// Current 返回当前数据; 从未成功加载时返回最近一次的加载错误
func (s *Source) Current() (*processor.Dataset, error) {
	if ds := s.current.Load(); ds != nil {
		return ds, nil
	}
	if err := s.lastErr.Load(); err != nil {
		return nil, *err
	}
	return nil, fmt.Errorf("%w: dataset %s not loaded", processor.ErrDataUnavailable, s.path)
}

// Reloads 成功加载的次数
func (s *Source) Reloads() int64 {
	return s.reloads.Load()
}
