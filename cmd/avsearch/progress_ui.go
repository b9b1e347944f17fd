package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/provider"
)

var _ provider.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的逐条进度输出。
//
// 约束：
// - 只写 stderr，不污染 stdout 的 JSON 输出契约
// - 事件驱动：provider 只发事件，CLI 决定如何展示
// - keepalive：单条详情页长时间未完成时定期输出一行
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnSearch(q domain.Query, searchURL string, items int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.startedAt = now
	p.total = items

	fmt.Fprintf(p.w, "[%s] 搜索 %s\n", now.Format("15:04:05"), q)
	fmt.Fprintf(p.w, "  url: %s\n", truncate(searchURL, 160))
	if items == 0 {
		fmt.Fprintln(p.w, "  列表为空")
	} else {
		fmt.Fprintf(p.w, "  items: %d（逐条抓取详情页）\n\n", items)
	}
	p.lastPrinted = now

	if items > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnItemDone(idx, total int, link string, entry domain.MovieEntry, err error, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	if err != nil {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] FAIL %s: %s (%s)\n",
			idx, total, link, truncate(err.Error(), 160), formatShortDuration(dur),
		)
	} else {
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] OK %s%s (%s)\n",
			idx, total, truncate(entry.Title, 80), videoNote(entry), formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，并输出汇总。
	if p.done >= p.total {
		if p.tickerStarted {
			close(p.stopCh)
			p.tickerStarted = false
		}
		fmt.Fprintf(p.w, "\n完成：ok=%d fail=%d elapsed=%s\n", p.ok, p.fail, formatElapsed(time.Since(p.startedAt)))
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func videoNote(e domain.MovieEntry) string {
	if strings.TrimSpace(e.VideoURL) == "" {
		return " video=none"
	}
	return ""
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
