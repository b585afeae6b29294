package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "인프라 상태 점검",
	Long: `데이터베이스와 Redis 연결 상태를 점검합니다.

표시 정보:
- DB 응답 시간
- 커넥션 풀 통계 (acquired/idle/total/max)
- Redis 활성화 여부

Example:
  go run ./cmd/lagcorr status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== lagcorr Status ===")
	fmt.Println()

	ctx := cmd.Context()
	cfg, _, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	health, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	fmt.Println("📊 Database")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-15s %10s\n", "Healthy:", fmt.Sprintf("%v", health.Healthy))
	fmt.Printf("%-15s %10s\n", "Response:", health.ResponseTime.String())
	fmt.Printf("%-15s %10d\n", "Acquired:", health.Stats.AcquiredConns)
	fmt.Printf("%-15s %10d\n", "Idle:", health.Stats.IdleConns)
	fmt.Printf("%-15s %10d\n", "Total:", health.Stats.TotalConns)
	fmt.Printf("%-15s %10d\n", "Max:", health.Stats.MaxConns)
	fmt.Println()

	fmt.Println("🗄  Redis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	rc, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("%-15s %10s\n", "Connected:", "false")
		fmt.Printf("Error: %v\n", err)
	} else {
		defer rc.Close()
		fmt.Printf("%-15s %10v\n", "Enabled:", rc.Enabled())
		if rc.Enabled() {
			fmt.Printf("%-15s %10s\n", "Addr:", cfg.Redis.Addr)
		}
	}
	fmt.Println()

	fmt.Println("✅ Status check complete")
	return nil
}
