package main

import (
	"errors"
	"fmt"
	"log"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"

	"github.com/ironsmile/vulkan-video-example/pluginmanager"
	"github.com/ironsmile/vulkan-video-example/textures"
	"github.com/ironsmile/vulkan-video-example/trade"
	"github.com/ironsmile/vulkan-video-example/video"
)

// VideoExampleApp plays a video file through a video importer plugin while
// drawing a triangle textured with an image loaded by an image importer plugin.
type VideoExampleApp struct {
	width  int
	height int

	// validationLayers is the list of required device extensions needed by this
	// program when the -engine-debug flag is set.
	validationLayers       []string
	enableValidationLayers bool

	// deviceExtensions is the list of required device extensions needed by this
	// program.
	deviceExtensions []string

	videoImporter video.Importer

	// texture is the decoded image drawn on the triangle.
	texture *trade.ImageData2D
	color   linmath.Vec4

	lastFrame time.Time

	window   *glfw.Window
	instance vk.Instance

	// physicalDevice is the physical device selected for this program.
	physicalDevice vk.PhysicalDevice

	// device is the logical device created for interfacing with the physical device.
	device vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue

	surface vk.Surface

	swapChain            vk.Swapchain
	swapChainImages      []vk.Image
	swapChainImageViews  []vk.ImageView
	swapChainImageFormat vk.Format
	swapChainExtent      vk.Extent2D

	swapChainFramebuffers []vk.Framebuffer

	renderPass          vk.RenderPass
	descriptorSetLayout vk.DescriptorSetLayout
	pipelineLayout      vk.PipelineLayout

	graphicsPipeline vk.Pipeline

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer

	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFences     []vk.Fence

	frameBufferResized bool

	currentFrame uint32

	vertices           []Vertex
	vertexBuffer       vk.Buffer
	vertexBufferMemory vk.DeviceMemory

	descriptorPool vk.DescriptorPool
	descriptorSets []vk.DescriptorSet

	textureImage       vk.Image
	textureImageMemory vk.DeviceMemory
	textureImageView   vk.ImageView
	textureSampler     vk.Sampler
}

// NewVideoExampleApp loads the plugins, opens the video file and decodes the
// texture. Errors carry the exit code of the failed step.
func NewVideoExampleApp(args arguments) (*VideoExampleApp, error) {
	videoManager, err := newVideoManager(args.pluginDir)
	if err != nil {
		return nil, withExitCode(exitFailure, err)
	}

	imageManager, err := newImageManager(args.pluginDir)
	if err != nil {
		return nil, withExitCode(exitFailure, err)
	}

	app := newApp(args)
	if err := app.setup(args, videoManager, imageManager); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

func newApp(args arguments) *VideoExampleApp {
	return &VideoExampleApp{
		width:  args.windowSize.width,
		height: args.windowSize.height,

		enableValidationLayers: args.debug,
		validationLayers: []string{
			"VK_LAYER_KHRONOS_validation\x00",
		},
		deviceExtensions: []string{
			vk.KhrSwapchainExtensionName + "\x00",
		},
		physicalDevice: vk.PhysicalDevice(vk.NullHandle),
		device:         vk.Device(vk.NullHandle),
		surface:        vk.NullSurface,
		swapChain:      vk.NullSwapchain,

		vertices: triangleVertices(),
		color:    rgbf(0xffb2b2),

		vertexBuffer:       vk.NullBuffer,
		vertexBufferMemory: vk.NullDeviceMemory,
		descriptorPool:     vk.NullDescriptorPool,

		textureImage:       vk.NullImage,
		textureImageMemory: vk.NullDeviceMemory,
		textureImageView:   vk.NullImageView,
		textureSampler:     vk.NullSampler,

		descriptorSetLayout: vk.NullDescriptorSetLayout,
	}
}

func (a *VideoExampleApp) setup(
	args arguments,
	videoManager *pluginmanager.Manager[video.Importer],
	imageManager *pluginmanager.Manager[trade.Importer],
) error {
	videoImporter, err := videoManager.LoadAndInstantiate(args.videoImporter)
	if err != nil {
		return withExitCode(exitFailure, fmt.Errorf("loading video importer: %w", err))
	}
	a.videoImporter = videoImporter

	log.Printf("Opening file: %s", args.file)

	if err := videoImporter.OpenFile(args.file); err != nil {
		return withExitCode(exitVideoFailure, fmt.Errorf("opening video: %w", err))
	}

	if videoImporter.IsOpened() {
		if a.enableValidationLayers {
			log.Printf("Video: %s", videoImporter.Info())
		}
		videoImporter.Play()
	}

	imageImporter, err := imageManager.LoadAndInstantiate(args.imageImporter)
	if err != nil {
		return withExitCode(exitFailure, fmt.Errorf("loading image importer: %w", err))
	}
	defer imageImporter.Close()

	data, err := textures.FS.ReadFile(textures.StoneTGA)
	if err != nil {
		return withExitCode(exitImageFailure, fmt.Errorf("reading texture: %w", err))
	}

	if err := imageImporter.OpenData(data); err != nil {
		return withExitCode(exitImageFailure, fmt.Errorf("opening texture: %w", err))
	}

	img, err := imageImporter.Image2D(0)
	if err != nil {
		return withExitCode(exitImageFailure, fmt.Errorf("importing texture: %w", err))
	}

	if _, err := textureFormat(img.Format); err != nil {
		return withExitCode(exitImageFailure, err)
	}
	a.texture = img

	return nil
}

// Close releases the video importer.
func (a *VideoExampleApp) Close() {
	if a.videoImporter == nil {
		return
	}

	if err := a.videoImporter.Close(); err != nil {
		log.Printf("WARNING: closing video importer: %s", err)
	}
	a.videoImporter = nil
}

// Run runs the vulkan program.
func (a *VideoExampleApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.cleanupVulkan()

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *VideoExampleApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(a.width, a.height, title, nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	window.SetFramebufferSizeCallback(a.frameBufferResizeCallback)

	a.window = window
	return nil
}

func (a *VideoExampleApp) frameBufferResizeCallback(
	w *glfw.Window,
	width int,
	height int,
) {
	a.frameBufferResized = true
}

func (a *VideoExampleApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *VideoExampleApp) mainLoop() error {
	a.lastFrame = time.Now()

	for !a.window.ShouldClose() {
		err := a.drawFrame()
		if err != nil {
			return fmt.Errorf("error drawing a frame: %w", err)
		}

		glfw.PollEvents()
	}

	vk.DeviceWaitIdle(a.device)

	return nil
}

// advanceVideo moves the video playback forward by the time the last frame
// took. Decoded frames are not drawn.
func (a *VideoExampleApp) advanceVideo(dt time.Duration) {
	if a.videoImporter == nil {
		return
	}

	log.Printf("playing ...")

	frame, err := a.videoImporter.Advance(dt)
	switch {
	case errors.Is(err, video.ErrEndOfStream):
		log.Printf("End of video reached.")
	case err != nil:
		log.Printf("WARNING: advancing video: %s", err)
	case frame != nil && a.enableValidationLayers:
		log.Printf("video frame %d", frame.Index)
	}
}

func (a *VideoExampleApp) pushConstants() pushConstants {
	return pushConstants{color: a.color}
}

func pushConstantsSize() uint32 {
	return uint32(unsafe.Sizeof(pushConstants{}))
}
