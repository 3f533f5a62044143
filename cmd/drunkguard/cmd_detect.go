package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/getcharzp/go-drunkguard/intox"
	"github.com/getcharzp/go-drunkguard/internal/style"
)

// detectOutput detect --json 的输出
type detectOutput struct {
	CheckID       string                  `json:"check_id"`
	Photo         string                  `json:"photo"`
	Class         intox.Label             `json:"class"`
	Confidence    float32                 `json:"confidence"`
	Threshold     float32                 `json:"threshold"`
	Confident     bool                    `json:"confident"`
	Probabilities map[intox.Label]float32 `json:"probabilities"`
}

func newDetectCmd(stdout, _ io.Writer) *cobra.Command {
	var (
		gray      bool
		asJSON    bool
		threshold float32
	)

	cmd := &cobra.Command{
		Use:   "detect <photo>...",
		Short: "识别照片中人物的醉酒程度",
		Long: `加载配置中的模型, 对每张照片输出分类、置信度以及四个分类的概率。

置信度低于阈值时结果标记为不确定, 阈值默认取配置中的
[detect] confidence_threshold, 可以用 --threshold 覆盖。

Examples:
  drunkguard detect face.jpg
  drunkguard detect --gray ir_camera.png
  drunkguard detect --json --threshold 0.8 a.jpg b.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, stdout, args, gray, asJSON, threshold)
		},
	}

	cmd.Flags().BoolVar(&gray, "gray", false, "按灰度图处理 (红外/黑白相机)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "以 JSON 输出, 每张照片一行")
	cmd.Flags().Float32Var(&threshold, "threshold", -1, "置信度阈值 [0, 1], 默认使用配置")

	return cmd
}

func runDetect(cmd *cobra.Command, stdout io.Writer, photos []string, gray, asJSON bool, threshold float32) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if threshold < 0 {
		threshold = s.cfg.Detect.ConfidenceThreshold
	}
	if threshold > 1 {
		return fmt.Errorf("置信度阈值必须在 [0, 1] 之间: %v", threshold)
	}

	detect := s.engine.Detect
	if gray {
		detect = s.engine.DetectGrayscale
	}

	for _, photo := range photos {
		img, err := openImage(photo)
		if err != nil {
			return err
		}
		res, err := detect(img)
		if err != nil {
			s.log.Error("识别失败", zap.String("photo", photo), zap.Error(err))
			return hintWrap(fmt.Errorf("识别 %s 失败: %w", photo, err))
		}

		out := newDetectOutput(photo, res, threshold)
		s.log.Info("识别完成",
			zap.String("check_id", out.CheckID),
			zap.String("photo", photo),
			zap.Stringer("class", res.Label()),
			zap.Float32("confidence", res.Confidence()),
			zap.Bool("confident", out.Confident))

		if asJSON {
			if err := json.NewEncoder(stdout).Encode(out); err != nil {
				return err
			}
			continue
		}
		printDetect(stdout, out)
	}
	return nil
}

func newDetectOutput(photo string, res intox.Result, threshold float32) detectOutput {
	probs := make(map[intox.Label]float32, intox.NumClasses)
	for _, l := range intox.Labels() {
		probs[l] = res.ProbabilityOf(l)
	}
	return detectOutput{
		CheckID:       uuid.NewString(),
		Photo:         photo,
		Class:         res.Label(),
		Confidence:    res.Confidence(),
		Threshold:     threshold,
		Confident:     res.MeetsThreshold(threshold),
		Probabilities: probs,
	}
}

func printDetect(w io.Writer, out detectOutput) {
	icon := style.Success.Render(style.IconPass)
	note := ""
	if !out.Confident {
		icon = style.Warning.Render(style.IconWarn)
		note = style.Dim.Render(fmt.Sprintf(" (低于阈值 %.2f, 建议复核)", out.Threshold))
	}
	fmt.Fprintf(w, "%s %s  %s %.2f%%%s\n", icon, style.Bold.Render(out.Photo), style.Level(out.Class), out.Confidence*100, note)
	fmt.Fprintf(w, "  %s\n", style.Dim.Render("Check ID: "+out.CheckID))
	fmt.Fprint(w, style.Probabilities(out.Probabilities, 24))
}
