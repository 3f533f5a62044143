package main

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/up-zero/gotool/imageutil"
	"go.uber.org/zap"

	drunkguard "github.com/getcharzp/go-drunkguard"
	"github.com/getcharzp/go-drunkguard/intox"
)

// bannerColors 每个分类的标签底色
var bannerColors = [intox.NumClasses]color.RGBA{
	intox.Sober:      {R: 46, G: 160, B: 67, A: 255},
	intox.Slightly:   {R: 219, G: 171, B: 9, A: 255},
	intox.Moderately: {R: 230, G: 80, B: 60, A: 255},
	intox.Heavily:    {R: 137, G: 87, B: 229, A: 255},
}

func newAnnotateCmd(stdout, _ io.Writer) *cobra.Command {
	var (
		output   string
		gray     bool
		fontSize float64
		quality  int
	)

	cmd := &cobra.Command{
		Use:   "annotate <photo>",
		Short: "识别照片并把结果绘制到图片上",
		Long: `在图片左上角绘制 "<分类> <置信度>%" 标签, 并按分类颜色描边。
置信度低于阈值时标签末尾追加 "?"。

Examples:
  drunkguard annotate face.jpg -o face_result.png
  drunkguard annotate --font-size 24 face.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = defaultAnnotatePath(args[0])
			}
			return runAnnotate(cmd, stdout, args[0], output, gray, fontSize, quality)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "输出路径, 默认 <photo>_drunkguard.png")
	cmd.Flags().BoolVar(&gray, "gray", false, "按灰度图处理 (红外/黑白相机)")
	cmd.Flags().Float64Var(&fontSize, "font-size", 16, "标签字体大小")
	cmd.Flags().IntVar(&quality, "quality", 90, "JPEG 输出质量")

	return cmd
}

func runAnnotate(cmd *cobra.Command, stdout io.Writer, photo, output string, gray bool, fontSize float64, quality int) error {
	if fontSize <= 0 {
		return fmt.Errorf("字体大小必须大于 0: %v", fontSize)
	}
	if quality < 1 || quality > 100 {
		return fmt.Errorf("输出质量必须在 [1, 100] 之间: %d", quality)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	img, err := openImage(photo)
	if err != nil {
		return err
	}
	detect := s.engine.Detect
	if gray {
		detect = s.engine.DetectGrayscale
	}
	res, err := detect(img)
	if err != nil {
		return hintWrap(fmt.Errorf("识别 %s 失败: %w", photo, err))
	}

	drawer, err := drunkguard.NewTextDrawer(s.cfg.Detect.FontPath)
	if err != nil {
		return err
	}
	defer drawer.Close()
	if err := drawer.SetSize(fontSize); err != nil {
		return fmt.Errorf("设置字体大小失败: %w", err)
	}

	text := bannerText(res, s.cfg.Detect.ConfidenceThreshold)
	bg := bannerColors[res.Label()]
	dst := drawer.DrawBanner(img, text, color.White, bg)
	imageutil.DrawThickRectOutline(dst, dst.Bounds(), bg, 3)

	if err := imageutil.Save(output, dst, quality); err != nil {
		return fmt.Errorf("保存图片 %s 失败: %w", output, err)
	}
	s.log.Info("标注完成", zap.String("photo", photo), zap.String("output", output), zap.String("label", text))
	fmt.Fprintln(stdout, output)
	return nil
}

func bannerText(res intox.Result, threshold float32) string {
	text := fmt.Sprintf("%s %.1f%%", res.Label(), res.Confidence()*100)
	if !res.MeetsThreshold(threshold) {
		text += " ?"
	}
	return text
}

func defaultAnnotatePath(photo string) string {
	ext := filepath.Ext(photo)
	return strings.TrimSuffix(photo, ext) + "_drunkguard.png"
}
