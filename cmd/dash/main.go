package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"mediastash/internal/client"
	"mediastash/internal/dashboard"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dash",
		Short: "mediastash 管理仪表盘",
		Long: `dash 在终端里渲染 mediastash 的管理仪表盘：
汇总用量统计、按用户与类型的分布，以及当前用户的分页文件列表。`,
		RunE: runDashboard,
	}
	deleteCmd = &cobra.Command{
		Use:   "delete <file-id>",
		Short: "删除一个文件并刷新仪表盘",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认 $HOME/.mediastash.yaml）")
	rootCmd.PersistentFlags().StringP("server", "s", "http://localhost:8080", "mediastash 服务地址")
	rootCmd.PersistentFlags().StringP("token", "t", "", "会话令牌")
	rootCmd.PersistentFlags().StringP("username", "u", "", "会话用户名")

	rootCmd.Flags().IntP("page", "p", 0, "文件列表页号，从 0 开始")
	rootCmd.Flags().Int("page-size", dashboard.DefaultRowsPerPage, "每页行数（10、25 或 100）")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))

	viper.BindEnv("server", "MEDIASTASH_SERVER")
	viper.BindEnv("token", "MEDIASTASH_TOKEN")
	viper.BindEnv("username", "MEDIASTASH_USERNAME")

	rootCmd.AddCommand(deleteCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mediastash")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func newClient() (*client.Client, error) {
	server := viper.GetString("server")
	token := viper.GetString("token")
	username := viper.GetString("username")

	if server == "" {
		return nil, fmt.Errorf("server address is required")
	}
	if token == "" {
		return nil, fmt.Errorf("session token is required (--token or MEDIASTASH_TOKEN)")
	}
	if username == "" {
		return nil, fmt.Errorf("username is required (--username or MEDIASTASH_USERNAME)")
	}

	return client.New(server, token, username), nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	api, err := newClient()
	if err != nil {
		return err
	}

	pageSize, _ := cmd.Flags().GetInt("page-size")
	page, _ := cmd.Flags().GetInt("page")

	// 先设页大小再设页号：换页大小会重置回第一页
	cursor := dashboard.NewCursor()
	cursor.SetRowsPerPage(pageSize)
	cursor.SetPage(page)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dash := dashboard.New(api)
	result := dash.Refresh(ctx)

	render(os.Stdout, api.Username(), dash, cursor, result)

	if !result.Ok() {
		return fmt.Errorf("some dashboard sections failed to load")
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	api, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dash := dashboard.New(api)
	result, err := dash.Delete(ctx, args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("deleted %s\n", args[0])

	render(os.Stdout, api.Username(), dash, dashboard.NewCursor(), result)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
