// MAC 地址

package bpfsign

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// macCandidate 是可用于实例标识的网卡
type macCandidate struct {
	name   string
	mac    string
	weight int
}

// interfaceWeight 为网卡打分：物理网卡、已启用、有 IPv4 地址各加 10 分
func interfaceWeight(iface net.Interface) int {
	weight := 0
	if !strings.Contains(iface.Name, "vmnet") && !strings.Contains(iface.Name, "vboxnet") &&
		!strings.HasPrefix(iface.Name, "docker") && !strings.HasPrefix(iface.Name, "veth") {
		weight += 10
	}
	if iface.Flags&net.FlagUp != 0 {
		weight += 10
	}
	if addrs, err := iface.Addrs(); err == nil {
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
				weight += 10
				break
			}
		}
	}
	return weight
}

// GetPrimaryMACAddress 返回电脑上的主要MAC地址，得分相同时按网卡名称选择
func GetPrimaryMACAddress() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var candidates []macCandidate
	for _, iface := range interfaces {
		if len(iface.HardwareAddr) == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		candidates = append(candidates, macCandidate{
			name:   iface.Name,
			mac:    iface.HardwareAddr.String(),
			weight: interfaceWeight(iface),
		})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no MAC address found")
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		return candidates[i].name < candidates[j].name
	})

	// 冒号不适合出现在日志文件名中
	return strings.ReplaceAll(candidates[0].mac, ":", ""), nil
}
