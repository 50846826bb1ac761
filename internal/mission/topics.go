package mission

import (
	"fmt"
	"sort"
)

// Camera binds a logical camera role to the topic it was recorded under
// and the payload encoding used on that topic.
type Camera struct {
	Topic    string
	Encoding Encoding
}

// TopicMap is the immutable topic-to-role mapping a Source filters by.
// It is built once from configuration and passed by value thereafter;
// there is no ambient lookup.
type TopicMap struct {
	poseTopic string
	cameras   map[string]cameraEntry // keyed by topic
}

type cameraEntry struct {
	role     Role
	encoding Encoding
}

// NewTopicMap builds a TopicMap from a pose topic and a role-to-camera
// mapping. Every camera needs a topic, and no two roles may share one.
func NewTopicMap(poseTopic string, cameras map[Role]Camera) (TopicMap, error) {
	if poseTopic == "" {
		return TopicMap{}, fmt.Errorf("pose topic is required")
	}

	byTopic := make(map[string]cameraEntry, len(cameras))
	for role, cam := range cameras {
		if cam.Topic == "" {
			return TopicMap{}, fmt.Errorf("camera role %q has no topic", role)
		}
		if cam.Topic == poseTopic {
			return TopicMap{}, fmt.Errorf("camera role %q uses the pose topic %q", role, cam.Topic)
		}
		if prev, ok := byTopic[cam.Topic]; ok {
			return TopicMap{}, fmt.Errorf("camera roles %q and %q share topic %q", prev.role, role, cam.Topic)
		}
		switch cam.Encoding {
		case EncodingRaw, EncodingCompressed:
		default:
			return TopicMap{}, fmt.Errorf("camera role %q has unknown encoding %q", role, cam.Encoding)
		}
		byTopic[cam.Topic] = cameraEntry{role: role, encoding: cam.Encoding}
	}

	return TopicMap{poseTopic: poseTopic, cameras: byTopic}, nil
}

// PoseTopic returns the topic pose samples are read from.
func (m TopicMap) PoseTopic() string {
	return m.poseTopic
}

// Roles returns all configured camera roles in stable (sorted) order.
func (m TopicMap) Roles() []Role {
	roles := make([]Role, 0, len(m.cameras))
	for _, entry := range m.cameras {
		roles = append(roles, entry.role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// CameraTopic returns the topic recorded for a role, if the role is mapped.
func (m TopicMap) CameraTopic(role Role) (string, bool) {
	for topic, entry := range m.cameras {
		if entry.role == role {
			return topic, true
		}
	}
	return "", false
}

// Resolve classifies a recorded topic. Unmapped topics return ok=false and
// are skipped by the Source without decoding.
func (m TopicMap) Resolve(topic string) (kind Kind, role Role, encoding Encoding, ok bool) {
	if topic == m.poseTopic {
		return KindPose, "", "", true
	}
	if entry, found := m.cameras[topic]; found {
		return KindImage, entry.role, entry.encoding, true
	}
	return 0, "", "", false
}
