package main

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/ironsmile/vulkan-video-example/trade"
)

// textureFormat returns the Vulkan format a texture with the given pixel
// format is uploaded as. Three channel formats are rarely supported for
// sampling so they are expanded to four channels, see textureData.
func textureFormat(format trade.PixelFormat) (vk.Format, error) {
	switch format {
	case trade.R8Unorm:
		return vk.FormatR8Unorm, nil
	case trade.RG8Unorm:
		return vk.FormatR8g8Unorm, nil
	case trade.RGB8Unorm, trade.RGBA8Unorm:
		return vk.FormatR8g8b8a8Unorm, nil
	default:
		return vk.FormatUndefined, fmt.Errorf("unsupported texture pixel format %s", format)
	}
}

// textureData returns the pixels of img laid out for textureFormat.
func textureData(img *trade.ImageData2D) []byte {
	if img.Format == trade.RGB8Unorm {
		return img.RGBA()
	}
	return img.Data
}

// createTextureImage uploads the imported image as a single level texture.
func (a *VideoExampleApp) createTextureImage() error {
	format, err := textureFormat(a.texture.Format)
	if err != nil {
		return err
	}

	pixels := textureData(a.texture)
	texWidth := uint32(a.texture.Size.X)
	texHeight := uint32(a.texture.Size.Y)
	imgSize := vk.DeviceSize(len(pixels))

	var (
		stagingBuffer       vk.Buffer
		stagingBufferMemory vk.DeviceMemory
	)

	err = a.createBuffer(
		imgSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit),
		&stagingBuffer,
		&stagingBufferMemory,
	)
	if err != nil {
		return fmt.Errorf("failed to create texture GPU buffer: %w", err)
	}

	defer func() {
		vk.DestroyBuffer(a.device, stagingBuffer, nil)
		vk.FreeMemory(a.device, stagingBufferMemory, nil)
	}()

	var pData unsafe.Pointer
	vk.MapMemory(a.device, stagingBufferMemory, 0, imgSize, 0, &pData)
	vk.Memcopy(pData, pixels)
	vk.UnmapMemory(a.device, stagingBufferMemory)

	var (
		textureImage       vk.Image
		textureImageMemory vk.DeviceMemory
	)

	err = a.createImage(
		texWidth,
		texHeight,
		format,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|
			vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		&textureImage,
		&textureImageMemory,
	)
	if err != nil {
		return fmt.Errorf("failed to create Vulkan image: %w", err)
	}
	a.textureImage = textureImage
	a.textureImageMemory = textureImageMemory

	err = a.transitionImageLayout(
		a.textureImage,
		vk.ImageLayoutUndefined,
		vk.ImageLayoutTransferDstOptimal,
	)
	if err != nil {
		return fmt.Errorf("transition image layout: %w", err)
	}

	err = a.copyBufferToImage(stagingBuffer, a.textureImage, texWidth, texHeight)
	if err != nil {
		return fmt.Errorf("copying buffer to image: %w", err)
	}

	err = a.transitionImageLayout(
		a.textureImage,
		vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal,
	)
	if err != nil {
		return fmt.Errorf("transitioning to read only optimal layout: %w", err)
	}

	return nil
}

func (a *VideoExampleApp) transitionImageLayout(
	image vk.Image,
	oldLayout vk.ImageLayout,
	newLayout vk.ImageLayout,
) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var (
		sourceStage      vk.PipelineStageFlags
		destinationStage vk.PipelineStageFlags
	)

	switch {
	case oldLayout == vk.ImageLayoutUndefined &&
		newLayout == vk.ImageLayoutTransferDstOptimal:

		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)

	case oldLayout == vk.ImageLayoutTransferDstOptimal &&
		newLayout == vk.ImageLayoutShaderReadOnlyOptimal:

		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)

		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)

	default:
		return fmt.Errorf("unsupported layout transition")
	}

	commandBuffer, err := a.beginSingleTimeCommands()
	if err != nil {
		return fmt.Errorf("failed to begin single time commands: %w", err)
	}

	vk.CmdPipelineBarrier(
		commandBuffer,
		sourceStage, destinationStage,
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier},
	)

	return a.endSingleTimeCommands(commandBuffer)
}

func (a *VideoExampleApp) copyBufferToImage(
	buffer vk.Buffer,
	image vk.Image,
	width, height uint32,
) error {
	commandBuffer, err := a.beginSingleTimeCommands()
	if err != nil {
		return fmt.Errorf("failed to begin single time command buffer: %w", err)
	}

	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,

		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},

		ImageOffset: vk.Offset3D{
			X: 0, Y: 0, Z: 0,
		},

		ImageExtent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
	}

	vk.CmdCopyBufferToImage(
		commandBuffer,
		buffer,
		image,
		vk.ImageLayoutTransferDstOptimal,
		1,
		[]vk.BufferImageCopy{region},
	)

	return a.endSingleTimeCommands(commandBuffer)
}

func (a *VideoExampleApp) createTextureImageView() error {
	format, err := textureFormat(a.texture.Format)
	if err != nil {
		return err
	}

	textureImageView, err := a.createImageView(a.textureImage, format)
	if err != nil {
		return err
	}
	a.textureImageView = textureImageView

	return nil
}

// createTextureSampler creates a sampler with clamp-to-edge wrapping and
// linear magnification and minification.
func (a *VideoExampleApp) createTextureSampler() error {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  0,
	}

	var sampler vk.Sampler
	res := vk.CreateSampler(a.device, &samplerInfo, nil, &sampler)
	if res != vk.Success {
		return fmt.Errorf("failed to create sampler: %w", vk.Error(res))
	}
	a.textureSampler = sampler

	return nil
}
