package intox

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var (
	mean = [Channels]float32{MeanR, MeanG, MeanB}
	std  = [Channels]float32{StdR, StdG, StdB}
)

// Preprocess 预处理
//
// 图片被拉伸到 InputSize x InputSize (双线性插值, 不保持宽高比),
// 按 HWC 顺序 (R, G, B 交错) 写入 dst, 每个通道做 ImageNet 归一化。
// dst 由调用方持有并可复用, 长度至少为 InputLen, 前 InputLen 个值每次都会被完整覆盖。
//
// # Params:
//
//	img: 原图, 任意尺寸的彩色或灰度图
//	dst: 目标缓冲区
func Preprocess(img image.Image, dst []float32) error {
	if err := checkArgs(img, dst); err != nil {
		return err
	}
	if isGrayscale(img) {
		return PreprocessGrayscale(img, dst)
	}

	// NRGBA 保存未预乘的颜色, 半透明像素的 RGB 不会被 alpha 压暗
	resized := image.NewNRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	for y := 0; y < InputSize; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+InputSize*4]
		for x := 0; x < InputSize; x++ {
			idx := (y*InputSize + x) * Channels
			writePixel(dst[idx:idx+Channels], row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return nil
}

// PreprocessGrayscale 灰度图预处理
//
// 先转换为单通道亮度, 缩放后把亮度复制到 R, G, B 三个通道, 三个通道在归一化前完全相同。
// 其余步骤与 Preprocess 一致。
func PreprocessGrayscale(img image.Image, dst []float32) error {
	if err := checkArgs(img, dst); err != nil {
		return err
	}

	gray := toGray(img)
	resized := image.NewGray(image.Rect(0, 0, InputSize, InputSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	for y := 0; y < InputSize; y++ {
		row := resized.Pix[y*resized.Stride : y*resized.Stride+InputSize]
		for x := 0; x < InputSize; x++ {
			idx := (y*InputSize + x) * Channels
			v := row[x]
			writePixel(dst[idx:idx+Channels], v, v, v)
		}
	}
	return nil
}

func checkArgs(img image.Image, dst []float32) error {
	if img == nil {
		return fmt.Errorf("%w: 图片为空", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}
	if len(dst) < InputLen {
		return fmt.Errorf("%w: 需要 %d, 实际 %d", ErrInvalidBuffer, InputLen, len(dst))
	}
	return nil
}

// toGray 转换为单通道亮度, 按未预乘的 RGB 计算, 系数与 color.GrayModel 相同
func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			lum := (19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16
			gray.Pix[y*gray.Stride+x] = uint8(lum)
		}
	}
	return gray
}

// writePixel 8 位 RGB -> 归一化的 3 个 float32
func writePixel(out []float32, r, g, b uint8) {
	out[0] = (float32(r)/255.0 - mean[0]) / std[0]
	out[1] = (float32(g)/255.0 - mean[1]) / std[1]
	out[2] = (float32(b)/255.0 - mean[2]) / std[2]
}

// isGrayscale 图片是否为单通道灰度
func isGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}
