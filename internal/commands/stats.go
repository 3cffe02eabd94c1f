package commands

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"go-guildbuilder/internal/bot"
	"go-guildbuilder/internal/metrics"
	"go-guildbuilder/internal/storage"
	"go-guildbuilder/pkg/util"
)

// SystemStats holds host, runtime and builder statistics
type SystemStats struct {
	Hostname string
	Platform string
	Uptime   time.Duration

	CPUModel string
	CPUCores int
	CPUUsage float64

	TotalMemory   uint64
	UsedMemory    uint64
	MemoryPercent float64

	DiskTotal   uint64
	DiskUsed    uint64
	DiskPercent float64

	NetworkSent uint64
	NetworkRecv uint64

	GoVersion  string
	GoRoutines int
	MemAlloc   uint64

	BotUptime time.Duration
	Guilds    int
	Latency   time.Duration

	Builds    int
	Templates int
	Process   metrics.Snapshot
}

var botStartTime = time.Now()

// handleStats shows host and builder statistics
func handleStats(ctx context.Context, r *reply, session *bot.Session, store storage.Store, registry *metrics.Registry) error {
	// cpu.Percent samples for a second
	if err := r.deferReply(); err != nil {
		return err
	}

	stats := gatherSystemStats(ctx)
	stats.Process = registry.Snapshot()
	if session != nil {
		stats.Guilds = session.GuildCount()
		stats.Latency = session.GetDiscord().HeartbeatLatency()
	}
	if store != nil {
		if n, err := store.UsageCount(ctx); err == nil {
			stats.Builds = n
		}
		if names, err := store.ListTemplates(ctx); err == nil {
			stats.Templates = len(names)
		}
	}

	return r.sendEmbed(createStatsEmbeds(stats)...)
}

// gatherSystemStats collects host and runtime statistics. Probes that fail
// leave their fields zero.
func gatherSystemStats(ctx context.Context) *SystemStats {
	stats := &SystemStats{}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = hostInfo.Hostname
		stats.Platform = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		stats.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	if cpuInfo, err := cpu.InfoWithContext(ctx); err == nil && len(cpuInfo) > 0 {
		stats.CPUModel = cpuInfo[0].ModelName
	}
	stats.CPUCores = runtime.NumCPU()
	if pct, err := cpu.PercentWithContext(ctx, time.Second, false); err == nil && len(pct) > 0 {
		stats.CPUUsage = pct[0]
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.TotalMemory = memInfo.Total
		stats.UsedMemory = memInfo.Used
		stats.MemoryPercent = memInfo.UsedPercent
	}

	if diskInfo, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats.DiskTotal = diskInfo.Total
		stats.DiskUsed = diskInfo.Used
		stats.DiskPercent = diskInfo.UsedPercent
	}

	if netIO, err := net.IOCountersWithContext(ctx, false); err == nil && len(netIO) > 0 {
		stats.NetworkSent = netIO[0].BytesSent
		stats.NetworkRecv = netIO[0].BytesRecv
	}

	stats.GoVersion = runtime.Version()
	stats.GoRoutines = runtime.NumGoroutine()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemAlloc = m.Alloc

	stats.BotUptime = time.Since(botStartTime)
	return stats
}

func createStatsEmbeds(stats *SystemStats) []*discordgo.MessageEmbed {
	builderEmbed := &discordgo.MessageEmbed{
		Title: "🏗️ Builder Statistics",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🚀 Bot Status",
				Value: fmt.Sprintf("**Uptime:** `%s`\n**Guilds:** `%d`\n**Latency:** `%dms`",
					formatDuration(stats.BotUptime),
					stats.Guilds,
					stats.Latency.Milliseconds()),
				Inline: true,
			},
			{
				Name: "🧱 Blueprints",
				Value: fmt.Sprintf("**Builds:** `%d`\n**Templates:** `%d`",
					stats.Builds,
					stats.Templates),
				Inline: true,
			},
			{
				Name:   "⏱️ Since Restart",
				Value:  processSummary(stats.Process),
				Inline: false,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	hostEmbed := &discordgo.MessageEmbed{
		Title: "📊 Host Statistics",
		Color: 0x00BFFF,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "🖥️ Host",
				Value: fmt.Sprintf("**Hostname:** `%s`\n**Platform:** `%s`\n**Uptime:** `%s`",
					stats.Hostname,
					strings.TrimSpace(stats.Platform),
					formatDuration(stats.Uptime)),
				Inline: false,
			},
			{
				Name: "⚡ CPU",
				Value: fmt.Sprintf("**Model:** `%s`\n**Cores:** `%d`\n**Usage:** `%.2f%%`\n%s",
					util.Truncate(stats.CPUModel, 40),
					stats.CPUCores,
					stats.CPUUsage,
					createProgressBar(stats.CPUUsage, 100)),
				Inline: true,
			},
			{
				Name: "💾 Memory",
				Value: fmt.Sprintf("**Used:** `%s` / `%s`\n**Usage:** `%.2f%%`\n%s",
					formatBytes(stats.UsedMemory),
					formatBytes(stats.TotalMemory),
					stats.MemoryPercent,
					createProgressBar(stats.MemoryPercent, 100)),
				Inline: true,
			},
			{
				Name: "📀 Disk",
				Value: fmt.Sprintf("**Used:** `%s` / `%s`\n**Usage:** `%.2f%%`\n%s",
					formatBytes(stats.DiskUsed),
					formatBytes(stats.DiskTotal),
					stats.DiskPercent,
					createProgressBar(stats.DiskPercent, 100)),
				Inline: false,
			},
			{
				Name: "🌐 Network",
				Value: fmt.Sprintf("**Sent:** `%s`\n**Received:** `%s`",
					formatBytes(stats.NetworkSent),
					formatBytes(stats.NetworkRecv)),
				Inline: true,
			},
			{
				Name: "🔷 Go Runtime",
				Value: fmt.Sprintf("**Version:** `%s`\n**Goroutines:** `%d`\n**Allocated:** `%s`",
					stats.GoVersion,
					stats.GoRoutines,
					formatBytes(stats.MemAlloc)),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Guild Builder",
		},
	}

	return []*discordgo.MessageEmbed{builderEmbed, hostEmbed}
}

// processSummary renders the in-process counters of this run.
func processSummary(p metrics.Snapshot) string {
	return fmt.Sprintf("**Builds:** `%d` (+%d reapply)\n**Avg build:** `%.1fs` (max `%.1fs`)\n**AI designs:** `%d` ok, `%d` failed\n**Imports/Exports/Resets:** `%d/%d/%d`",
		p.Builds, p.Reapplies,
		p.BuildLatency.Avg.Seconds(), p.BuildLatency.Max.Seconds(),
		p.Designs, p.DesignFailures,
		p.Imports, p.Exports, p.Resets)
}

// Helper functions

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func createProgressBar(value, max float64) string {
	filled := int(value / max * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}
