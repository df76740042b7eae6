package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Dashboard 持有三个数据槽位（文件列表、统计、最近媒体）并负责刷新。
// 所有状态只在调用方的 goroutine 上读写；Refresh 内部的并发
// 在提交前已汇合。
type Dashboard struct {
	fetcher Fetcher

	files  []FileRecord
	stats  *StatsSummary
	recent []FileRecord
}

func New(fetcher Fetcher) *Dashboard {
	return &Dashboard{fetcher: fetcher}
}

// SlotStatus 描述一次刷新中单个槽位的结果。
// Err 非空时槽位保留旧值（可能过期），由调用方决定如何提示。
type SlotStatus struct {
	Updated bool
	Err     error
}

// RefreshResult 是一次完整刷新的逐槽位结果。
type RefreshResult struct {
	Files  SlotStatus
	Stats  SlotStatus
	Recent SlotStatus
}

// Ok 表示三个槽位全部更新成功。
func (r RefreshResult) Ok() bool {
	return r.Files.Err == nil && r.Stats.Err == nil && r.Recent.Err == nil
}

// Refresh 并发发起三路读取，全部返回后按固定顺序
// （文件、统计、最近媒体）提交槽位。单路失败不影响其余槽位，
// 失败槽位保留旧值并在结果中带回错误。
func (d *Dashboard) Refresh(ctx context.Context) RefreshResult {
	if d == nil || d.fetcher == nil {
		err := errors.New("dashboard not initialized")
		return RefreshResult{
			Files:  SlotStatus{Err: err},
			Stats:  SlotStatus{Err: err},
			Recent: SlotStatus{Err: err},
		}
	}

	var (
		files    []FileRecord
		filesErr error

		stats    *StatsSummary
		statsErr error

		recent    []FileRecord
		recentErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		files, filesErr = d.fetcher.Files(ctx)
		return nil
	})
	g.Go(func() error {
		stats, statsErr = d.fetcher.Stats(ctx)
		return nil
	})
	g.Go(func() error {
		recent, recentErr = d.fetcher.Recent(ctx)
		return nil
	})
	_ = g.Wait()

	var result RefreshResult

	// 提交顺序固定：文件、统计、最近媒体
	if filesErr != nil {
		result.Files = SlotStatus{Err: filesErr}
	} else {
		d.files = files
		result.Files = SlotStatus{Updated: true}
	}

	if statsErr != nil {
		result.Stats = SlotStatus{Err: statsErr}
	} else {
		d.stats = stats
		result.Stats = SlotStatus{Updated: true}
	}

	if recentErr != nil {
		result.Recent = SlotStatus{Err: recentErr}
	} else {
		d.recent = recent
		result.Recent = SlotStatus{Updated: true}
	}

	return result
}

// Delete 删除一个文件。服务端确认删除后才重新刷新；
// 删除失败时不触碰任何槽位，错误原样带回。
func (d *Dashboard) Delete(ctx context.Context, id string) (RefreshResult, error) {
	if d == nil || d.fetcher == nil {
		return RefreshResult{}, errors.New("dashboard not initialized")
	}

	if err := d.fetcher.Delete(ctx, id); err != nil {
		return RefreshResult{}, err
	}

	return d.Refresh(ctx), nil
}

// Files 返回文件槽位当前值；尚未加载时为 nil。
func (d *Dashboard) Files() []FileRecord { return d.files }

// Stats 返回统计槽位当前值；尚未加载时为 nil。
func (d *Dashboard) Stats() *StatsSummary { return d.stats }

// Recent 返回最近媒体槽位当前值；尚未加载时为 nil。
func (d *Dashboard) Recent() []FileRecord { return d.recent }
