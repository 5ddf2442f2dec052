package main

import (
	"fmt"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/trade"
	"github.com/ironsmile/vulkan-video-example/trade/anyimageimporter"
	"github.com/ironsmile/vulkan-video-example/trade/imageimporter"
	"github.com/ironsmile/vulkan-video-example/trade/tgaimporter"
	"github.com/ironsmile/vulkan-video-example/video"
	"github.com/ironsmile/vulkan-video-example/video/ffmpegimporter"
	"github.com/ironsmile/vulkan-video-example/video/vidioimporter"
)

// newVideoManager returns a manager knowing all video importers built into
// the binary. Plugins in pluginDir are found on demand.
func newVideoManager(pluginDir string) (*pluginmanager.Manager[video.Importer], error) {
	m := pluginmanager.New[video.Importer](video.PluginInterface)
	m.SetPluginDirectory(pluginDir)

	registers := []func(*pluginmanager.Manager[video.Importer]) error{
		ffmpegimporter.Register,
		vidioimporter.Register,
	}
	for _, register := range registers {
		if err := register(m); err != nil {
			return nil, fmt.Errorf("registering video importer: %w", err)
		}
	}

	return m, nil
}

// newImageManager returns a manager knowing all image importers built into
// the binary. Plugins in pluginDir are found on demand.
func newImageManager(pluginDir string) (*pluginmanager.Manager[trade.Importer], error) {
	m := pluginmanager.New[trade.Importer](trade.PluginInterface)
	m.SetPluginDirectory(pluginDir)

	registers := []func(*pluginmanager.Manager[trade.Importer]) error{
		tgaimporter.Register,
		imageimporter.Register,
		anyimageimporter.Register,
	}
	for _, register := range registers {
		if err := register(m); err != nil {
			return nil, fmt.Errorf("registering image importer: %w", err)
		}
	}

	return m, nil
}
