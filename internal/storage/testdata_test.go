package storage

import (
	"testing"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/stretchr/testify/require"
)

func samplePairs() []document.ArticlePair {
	return []document.ArticlePair{
		{
			ENURL:     "https://developer.nvidia.com/blog/cuda-graphs/",
			ENTitle:   "CUDA Graphs",
			ENContent: "Launch <kernels> & streams.\nSecond line.",
			ZHURL:     "https://developer.nvidia.com/zh-cn/blog/cuda-graphs/",
			ZHTitle:   "CUDA 图",
			ZHContent: "启动内核。",
		},
		{
			ENURL:     "https://developer.nvidia.com/blog/tensorrt/",
			ENTitle:   "TensorRT",
			ENContent: "No content found",
			ZHURL:     "https://developer.nvidia.com/zh-cn/blog/tensorrt/",
			ZHTitle:   "TensorRT 推理",
			ZHContent: "推理加速",
		},
	}
}

func sampleDataset(t *testing.T) *document.Dataset {
	t.Helper()
	ds, err := document.NewDataset("nvidia_dev_blog_dataset", samplePairs())
	require.NoError(t, err)
	return ds
}
